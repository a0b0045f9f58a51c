package render

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// Value is what a template expression evaluates to. Field values address a
// location in the data tree, whether or not the data has it; other values
// are literals or helper results.
type Value struct {
	// Path is the absolute data path of a field value.
	Path fieldpath.Path
	// Field reports whether the value addresses the data tree.
	Field bool

	node  *datatree.Node
	found bool
	raw   any
}

// FieldValue returns a resolved field value. A nil node yields an
// unresolved field.
func FieldValue(path fieldpath.Path, node *datatree.Node) Value {
	return Value{Path: path, Field: true, node: node, found: node != nil}
}

// Literal wraps a non-field value.
func Literal(raw any) Value {
	if v, ok := raw.(Value); ok {
		return v
	}
	return Value{raw: raw}
}

// Resolved reports whether a field value was found in the data.
func (v Value) Resolved() bool { return v.Field && v.found }

// Node returns the bound data node, or nil.
func (v Value) Node() *datatree.Node { return v.node }

// Raw returns the plain value: the scalar (or converted container) for
// fields, the literal otherwise. Unresolved fields and Missing results
// yield nil.
func (v Value) Raw() any {
	if v.node != nil {
		return v.node.Interface()
	}
	if v.Field {
		return nil
	}
	return plain(v.raw)
}

// Empty reports whether a field value would render as Missing.
func (v Value) Empty() bool {
	if !v.Field {
		return !Truthy(v.raw)
	}
	return !v.found || v.node.IsEmpty()
}

// child resolves one path component below v.
func (v Value) child(key string) (Value, error) {
	if !v.Field && v.node == nil {
		return Value{}, fmt.Errorf("can't evaluate field %s in %T value", key, v.raw)
	}
	out := Value{Path: v.Path.AppendName(key), Field: true}
	if v.node != nil {
		out.node, out.found = v.node.Child(key)
	}
	return out, nil
}

// field converts v into the ResolvedField it renders as.
func (v Value) field() markup.ResolvedField {
	if !v.found || v.node.IsEmpty() {
		return markup.Missing(v.Path)
	}
	if v.node.Kind() == datatree.KindScalar {
		return markup.Imported(v.Path, v.node.Value())
	}
	payload, err := v.node.MarshalJSON()
	if err != nil {
		return markup.Missing(v.Path)
	}
	return markup.Imported(v.Path, string(payload))
}

// plain strips placeholder wrappers from a raw value.
func plain(raw any) any {
	switch r := raw.(type) {
	case Value:
		return r.Raw()
	case markup.ResolvedField:
		if r.State != markup.StateImported {
			return nil
		}
		return r.Raw
	case *markup.ResolvedField:
		if r == nil {
			return nil
		}
		return plain(*r)
	case markup.HTML:
		return unwrapText(string(r))
	case string:
		return unwrapText(r)
	case *datatree.Node:
		return r.Interface()
	default:
		return raw
	}
}

func unwrapText(s string) any {
	value, state, ok := markup.DefaultDirectives().Unwrap(s)
	if !ok {
		return s
	}
	if state != markup.StateImported {
		return nil
	}
	return value
}

func keyString(raw any) (string, bool) {
	switch k := plain(raw).(type) {
	case string:
		return k, k != ""
	case int:
		return strconv.Itoa(k), k >= 0
	case int64:
		return strconv.FormatInt(k, 10), k >= 0
	case float64:
		if k < 0 || k != float64(int64(k)) {
			return "", false
		}
		return strconv.FormatInt(int64(k), 10), true
	default:
		return "", false
	}
}
