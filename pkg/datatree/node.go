// Package datatree holds the nested value tree a template is rendered
// against, and the merger that builds it from flat (path, value) rows.
package datatree

import (
	"fmt"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind is the shape of a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Node is a tagged union of null, scalar, list and map values. Trees are
// built by Merge or FromValue and are read-only afterwards.
type Node struct {
	kind   Kind
	value  any
	items  []*Node
	keys   []string
	fields map[string]*Node
	// padding marks a null created to fill a sparse list gap, as opposed to
	// an explicit null from the data.
	padding bool
}

// Null returns a null node.
func Null() *Node { return &Node{kind: KindNull} }

// Scalar wraps a raw value. A nil value yields a null node.
func Scalar(v any) *Node {
	if v == nil {
		return Null()
	}
	return &Node{kind: KindScalar, value: v}
}

// NewList returns a list node holding items. Nil items become null nodes.
func NewList(items ...*Node) *Node {
	n := &Node{kind: KindList, items: make([]*Node, 0, len(items))}
	for _, item := range items {
		if item == nil {
			item = Null()
		}
		n.items = append(n.items, item)
	}
	return n
}

// NewMap returns an empty map node.
func NewMap() *Node {
	return &Node{kind: KindMap, fields: make(map[string]*Node)}
}

// Kind reports the node shape. A nil node reports KindNull.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsNull reports whether n is nil or a null node.
func (n *Node) IsNull() bool { return n.Kind() == KindNull }

// Value returns the raw scalar value (nil for non-scalars).
func (n *Node) Value() any {
	if n == nil || n.kind != KindScalar {
		return nil
	}
	return n.value
}

// Len returns the number of list items or map keys.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindList:
		return len(n.items)
	case KindMap:
		return len(n.keys)
	default:
		return 0
	}
}

// IsEmpty reports whether the node renders as missing: null, empty string
// scalar, or a container without entries.
func (n *Node) IsEmpty() bool {
	switch n.Kind() {
	case KindNull:
		return true
	case KindScalar:
		s, ok := n.value.(string)
		return ok && s == ""
	default:
		return n.Len() == 0
	}
}

// Item returns the i-th list element.
func (n *Node) Item(i int) (*Node, bool) {
	if n.Kind() != KindList || i < 0 || i >= len(n.items) {
		return nil, false
	}
	return n.items[i], true
}

// Items returns a copy of the list elements.
func (n *Node) Items() []*Node {
	if n.Kind() != KindList {
		return nil
	}
	return append([]*Node(nil), n.items...)
}

// Field returns the map entry for key.
func (n *Node) Field(key string) (*Node, bool) {
	if n.Kind() != KindMap {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

// Keys returns the map keys in insertion order.
func (n *Node) Keys() []string {
	if n.Kind() != KindMap {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Child resolves a single path component: a key on maps, a numeric position
// on lists.
func (n *Node) Child(key string) (*Node, bool) {
	switch n.Kind() {
	case KindMap:
		return n.Field(key)
	case KindList:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, false
		}
		return n.Item(idx)
	default:
		return nil, false
	}
}

// Entry pairs a sequence element with the index it is addressed by.
type Entry struct {
	Index int
	Node  *Node
}

// Sequence returns the elements of an ordered collection. Lists yield their
// items positionally; maps whose keys are all non-negative integers yield
// their entries in ascending key order, indexed by key. Any other node is not
// a sequence.
func (n *Node) Sequence() ([]Entry, bool) {
	switch n.Kind() {
	case KindList:
		out := make([]Entry, len(n.items))
		for i, item := range n.items {
			out[i] = Entry{Index: i, Node: item}
		}
		return out, true
	case KindMap:
		if len(n.keys) == 0 {
			return nil, false
		}
		out := make([]Entry, 0, len(n.keys))
		for _, key := range n.keys {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || strconv.Itoa(idx) != key {
				return nil, false
			}
			out = append(out, Entry{Index: idx, Node: n.fields[key]})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
		return out, true
	default:
		return nil, false
	}
}

// Interface converts the tree into plain Go values: map[string]any, []any
// and scalars.
func (n *Node) Interface() any {
	switch n.Kind() {
	case KindScalar:
		return n.value
	case KindList:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(n.keys))
		for _, key := range n.keys {
			out[key] = n.fields[key].Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the tree as JSON.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Interface())
}

// Equal reports structural equality. Map key order is ignored.
func (n *Node) Equal(other *Node) bool {
	if n.Kind() != other.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindScalar:
		return fmt.Sprint(n.value) == fmt.Sprint(other.value)
	case KindList:
		if len(n.items) != len(other.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for _, key := range n.keys {
			child, ok := other.fields[key]
			if !ok || !n.fields[key].Equal(child) {
				return false
			}
		}
		return true
	}
}

// FromValue converts JSON/YAML shaped Go values into a tree. Map keys are
// visited in sorted order so the result is deterministic.
func FromValue(v any) *Node {
	switch val := v.(type) {
	case nil:
		return Null()
	case *Node:
		return val
	case map[string]any:
		n := NewMap()
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			n.set(key, FromValue(val[key]))
		}
		return n
	case map[any]any:
		converted := make(map[string]any, len(val))
		for key, item := range val {
			converted[fmt.Sprint(key)] = item
		}
		return FromValue(converted)
	case []any:
		n := NewList()
		for _, item := range val {
			n.items = append(n.items, FromValue(item))
		}
		return n
	case []string:
		n := NewList()
		for _, item := range val {
			n.items = append(n.items, Scalar(item))
		}
		return n
	default:
		return Scalar(val)
	}
}

func (n *Node) set(key string, child *Node) {
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

func (n *Node) setItem(i int, child *Node) {
	for len(n.items) <= i {
		n.items = append(n.items, &Node{kind: KindNull, padding: true})
	}
	n.items[i] = child
}

// become turns a null or empty scalar placeholder into an empty container.
func (n *Node) become(kind Kind) {
	n.kind = kind
	n.value = nil
	n.padding = false
	switch kind {
	case KindList:
		n.items = nil
	case KindMap:
		n.fields = make(map[string]*Node)
		n.keys = nil
	}
}
