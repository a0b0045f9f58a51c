package datatree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// NullLiteral is the cell text that marks an explicit null value.
const NullLiteral = "null"

// MaxIndex is the largest list index a row key may use. Sparse indices are
// padded with nulls, so the bound also caps the size of a single list.
const MaxIndex = 100000

// Row is a single (path, value) pair from a tabular dataset.
type Row struct {
	Key     string
	Value   any
	Comment string
	// Line is the 1-based source line, used in error messages. Zero when
	// unknown.
	Line int
}

// DataProcessingError reports rows that cannot be merged into one
// consistent tree shape.
type DataProcessingError struct {
	Path   string
	Line   int
	Reason string
}

func (e *DataProcessingError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("datatree: line %d: %s: %s", e.Line, e.Path, e.Reason)
	}
	return fmt.Sprintf("datatree: %s: %s", e.Path, e.Reason)
}

// Merge expands rows into a nested tree. Later rows win over earlier rows
// for the same path. Each seed path absent from the rows is then added as an
// empty string scalar so the tree carries every field the template expects.
func Merge(rows []Row, seeds []fieldpath.Path) (*Node, error) {
	root := NewMap()

	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		path, err := fieldpath.Parse(key)
		if err != nil {
			if row.Line > 0 {
				return nil, fmt.Errorf("datatree: line %d: %w", row.Line, err)
			}
			return nil, fmt.Errorf("datatree: %w", err)
		}
		if err := assign(root, path, leafNode(row.Value), row.Line); err != nil {
			return nil, err
		}
	}

	for _, seed := range seeds {
		if seed.IsRoot() {
			continue
		}
		plant(root, seed)
	}

	return root, nil
}

func leafNode(v any) *Node {
	switch val := v.(type) {
	case nil:
		return Null()
	case string:
		if val == NullLiteral {
			return Null()
		}
		return Scalar(val)
	default:
		return Scalar(val)
	}
}

func containerFor(seg fieldpath.Segment) Kind {
	if seg.IsIndex() {
		return KindList
	}
	return KindMap
}

func assign(root *Node, path fieldpath.Path, leaf *Node, line int) error {
	segs := path.Segments()
	cur := root

	for i, seg := range segs {
		at := fieldpath.New(segs[:i+1]...).String()
		if seg.IsIndex() && seg.Index() > MaxIndex {
			return &DataProcessingError{
				Path:   at,
				Line:   line,
				Reason: fmt.Sprintf("index exceeds limit of %d", MaxIndex),
			}
		}
		if cur.Kind() != containerFor(seg) {
			return &DataProcessingError{
				Path:   at,
				Line:   line,
				Reason: fmt.Sprintf("%s node cannot hold %s", cur.Kind(), segmentNoun(seg)),
			}
		}

		last := i == len(segs)-1
		child, _ := lookup(cur, seg)

		if last {
			if child != nil && (child.kind == KindList || child.kind == KindMap) && child.Len() > 0 {
				return &DataProcessingError{Path: at, Line: line, Reason: "value conflicts with nested fields"}
			}
			put(cur, seg, leaf)
			return nil
		}

		want := containerFor(segs[i+1])
		switch {
		case child == nil:
			child = &Node{}
			child.become(want)
			put(cur, seg, child)
		case child.kind == KindNull || (child.kind == KindScalar && child.IsEmpty()):
			child.become(want)
		case child.kind == KindScalar:
			return &DataProcessingError{Path: at, Line: line, Reason: "scalar value cannot hold nested fields"}
		case child.kind != want:
			return &DataProcessingError{
				Path:   at,
				Line:   line,
				Reason: fmt.Sprintf("ambiguous shape: %s used as both list and map", at),
			}
		}
		cur = child
	}
	return nil
}

// plant adds an empty scalar at path when nothing exists there. Only absent
// children and list gap padding are replaced; explicit nulls are data. Seeds
// never override data and silently stop at shape conflicts.
func plant(root *Node, path fieldpath.Path) {
	segs := path.Segments()
	cur := root

	for i, seg := range segs {
		if cur.Kind() != containerFor(seg) || (seg.IsIndex() && seg.Index() > MaxIndex) {
			return
		}
		child, _ := lookup(cur, seg)
		if i == len(segs)-1 {
			if child == nil || child.padding {
				put(cur, seg, Scalar(""))
			}
			return
		}

		want := containerFor(segs[i+1])
		switch {
		case child == nil:
			child = &Node{}
			child.become(want)
			put(cur, seg, child)
		case child.padding:
			child.become(want)
		case child.kind != want:
			return
		}
		cur = child
	}
}

func lookup(n *Node, seg fieldpath.Segment) (*Node, bool) {
	if seg.IsIndex() {
		return n.Item(seg.Index())
	}
	return n.Field(seg.Name())
}

func put(n *Node, seg fieldpath.Segment, child *Node) {
	if seg.IsIndex() {
		n.setItem(seg.Index(), child)
		return
	}
	n.set(seg.Name(), child)
}

func segmentNoun(seg fieldpath.Segment) string {
	if seg.IsIndex() {
		return "index " + strconv.Itoa(seg.Index())
	}
	return fmt.Sprintf("field %q", seg.Name())
}
