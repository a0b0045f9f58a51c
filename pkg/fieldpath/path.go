package fieldpath

import (
	"strconv"
	"strings"
)

// Kind distinguishes property segments from index segments.
type Kind uint8

const (
	// KindName addresses a property of a map.
	KindName Kind = iota
	// KindIndex addresses a position in a list.
	KindIndex
)

// Segment is a single path component.
type Segment struct {
	kind  Kind
	name  string
	index int
}

// Name returns a property segment.
func Name(name string) Segment {
	return Segment{kind: KindName, name: name}
}

// Index returns an index segment.
func Index(i int) Segment {
	return Segment{kind: KindIndex, index: i}
}

// Kind reports the segment kind.
func (s Segment) Kind() Kind { return s.kind }

// IsIndex reports whether the segment addresses a list position.
func (s Segment) IsIndex() bool { return s.kind == KindIndex }

// Name returns the property name, or "" for index segments.
func (s Segment) Name() string { return s.name }

// Index returns the list position, or -1 for property segments.
func (s Segment) Index() int {
	if s.kind != KindIndex {
		return -1
	}
	return s.index
}

// String renders the segment on its own: "name" or "[i]".
func (s Segment) String() string {
	if s.kind == KindIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.name
}

// Path is an ordered, immutable sequence of segments. The zero value is the
// root path.
type Path struct {
	segs []Segment
}

// New builds a path from segments. Empty names and negative indices panic;
// use Parse for untrusted input.
func New(segs ...Segment) Path {
	for _, seg := range segs {
		if seg.kind == KindName && seg.name == "" {
			panic("fieldpath: empty name segment")
		}
		if seg.kind == KindIndex && seg.index < 0 {
			panic("fieldpath: negative index segment")
		}
	}
	if len(segs) == 0 {
		return Path{}
	}
	return Path{segs: append([]Segment(nil), segs...)}
}

// Parse converts text into a Path. Property segments are separated by ".",
// indices are written as "[n]" suffixes or as bare numeric segments.
func Parse(text string) (Path, error) {
	if text == "" {
		return Path{}, malformed(text, 0, "empty path")
	}

	var segs []Segment
	offset := 0
	for i, part := range strings.Split(text, ".") {
		if part == "" {
			return Path{}, malformed(text, offset, "empty segment")
		}
		parsed, err := parsePart(text, part, offset, i == 0)
		if err != nil {
			return Path{}, err
		}
		segs = append(segs, parsed...)
		offset += len(part) + 1
	}
	return Path{segs: segs}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Normalize returns the canonical form of text.
func Normalize(text string) (string, error) {
	p, err := Parse(text)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

func parsePart(text, part string, offset int, first bool) ([]Segment, error) {
	if isDigits(part) {
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, malformed(text, offset, "index out of range")
		}
		return []Segment{Index(idx)}, nil
	}

	open := strings.IndexByte(part, '[')
	name := part
	if open >= 0 {
		name = part[:open]
	}
	if strings.ContainsAny(name, "]") {
		return nil, malformed(text, offset, "unexpected ']'")
	}

	var segs []Segment
	switch {
	case name != "":
		segs = append(segs, Name(name))
	case !first:
		// "a.[0]" has no property before its bracket
		return nil, malformed(text, offset, "empty segment")
	}
	if open < 0 {
		return segs, nil
	}

	rest := part[open:]
	pos := offset + open
	for rest != "" {
		if rest[0] != '[' {
			return nil, malformed(text, pos, "unexpected characters after index")
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, malformed(text, pos, "unterminated index")
		}
		digits := rest[1:end]
		if digits == "" {
			return nil, malformed(text, pos, "empty index")
		}
		if !isDigits(digits) {
			return nil, malformed(text, pos, "index must be a non-negative integer")
		}
		idx, err := strconv.Atoi(digits)
		if err != nil {
			return nil, malformed(text, pos, "index out of range")
		}
		segs = append(segs, Index(idx))
		pos += end + 1
		rest = rest[end+1:]
	}
	return segs, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String composes the canonical text form of the path.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segs {
		if seg.kind == KindIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.name)
	}
	return b.String()
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool { return len(p.segs) == 0 }

// Segments returns a copy of the path segments.
func (p Path) Segments() []Segment {
	if len(p.segs) == 0 {
		return nil
	}
	return append([]Segment(nil), p.segs...)
}

// Segment returns the i-th segment.
func (p Path) Segment(i int) Segment { return p.segs[i] }

// Last returns the final segment; ok is false for the root path.
func (p Path) Last() (Segment, bool) {
	if len(p.segs) == 0 {
		return Segment{}, false
	}
	return p.segs[len(p.segs)-1], true
}

// Root returns the first property name, or "" when the path is empty or
// starts with an index.
func (p Path) Root() string {
	if len(p.segs) == 0 || p.segs[0].kind != KindName {
		return ""
	}
	return p.segs[0].name
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Path{}
	}
	return Path{segs: append([]Segment(nil), p.segs[:len(p.segs)-1]...)}
}

// Append returns a new path with segs added. The receiver is never modified
// and the result never shares storage with it.
func (p Path) Append(segs ...Segment) Path {
	if len(segs) == 0 {
		return p
	}
	out := make([]Segment, 0, len(p.segs)+len(segs))
	out = append(out, p.segs...)
	out = append(out, New(segs...).segs...)
	return Path{segs: out}
}

// AppendName appends a property segment. Purely numeric names become index
// segments, matching how Parse treats "items.0".
func (p Path) AppendName(name string) Path {
	if isDigits(name) {
		if idx, err := strconv.Atoi(name); err == nil {
			return p.Append(Index(idx))
		}
	}
	return p.Append(Name(name))
}

// AppendIndex appends an index segment.
func (p Path) AppendIndex(i int) Path {
	return p.Append(Index(i))
}

// Join appends every segment of rel to p.
func Join(p, rel Path) Path {
	return p.Append(rel.segs...)
}

// HasPrefix reports whether prefix is a leading subsequence of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	for i, seg := range prefix.segs {
		if p.segs[i] != seg {
			return false
		}
	}
	return true
}

// Equal reports whether both paths have identical segments.
func (p Path) Equal(other Path) bool {
	return len(p.segs) == len(other.segs) && p.HasPrefix(other)
}
