package render

import (
	"fmt"
	"unicode/utf8"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// RegisterBuiltins adds the comparison, logic, collection and loop helpers.
func RegisterBuiltins(reg *Registry) error {
	builtins := map[string]Helper{
		"eq":        helperEq,
		"ne":        helperNe,
		"lt":        ordered("lt", func(c int) bool { return c < 0 }),
		"le":        ordered("le", func(c int) bool { return c <= 0 }),
		"gt":        ordered("gt", func(c int) bool { return c > 0 }),
		"ge":        ordered("ge", func(c int) bool { return c >= 0 }),
		"and":       helperAnd,
		"or":        helperOr,
		"not":       helperNot,
		"len":       helperLen,
		"index":     helperIndex,
		"first":     helperFirst,
		"last":      helperLast,
		"loopIndex": helperLoopIndex,
	}
	for name, helper := range builtins {
		if err := reg.Register(name, helper); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFormatters exposes f as formatDate, formatNumber and
// formatCurrency. Each takes one argument and returns the ResolvedField for
// it; field arguments keep their path, other arguments are reported under
// the formatter's own name.
func RegisterFormatters(reg *Registry, f *format.Formatter) error {
	if f == nil {
		return fmt.Errorf("render: formatter is required")
	}
	formatters := []struct {
		name  string
		field string
		fn    func(any, fieldpath.Path) markup.ResolvedField
	}{
		{"formatDate", "date", f.Date},
		{"formatNumber", "number", f.Number},
		{"formatCurrency", "currency", f.Currency},
	}
	for _, entry := range formatters {
		entry := entry
		helper := func(call Call) (any, error) {
			if err := call.arity(1); err != nil {
				return nil, err
			}
			arg := call.Args[0]
			path := arg.Path
			if !arg.Field || path.IsRoot() {
				path = fieldpath.New(fieldpath.Name(entry.field))
			}
			return entry.fn(arg.Raw(), path), nil
		}
		if err := reg.Replace(entry.name, helper); err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry returns a registry with the builtins and f's formatters.
func DefaultRegistry(f *format.Formatter) *Registry {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		panic(err)
	}
	if f == nil {
		f = format.Default()
	}
	if err := RegisterFormatters(reg, f); err != nil {
		panic(err)
	}
	return reg
}

func helperEq(call Call) (any, error) {
	if len(call.Args) < 2 {
		return nil, fmt.Errorf("eq: want at least 2 arguments, got %d", len(call.Args))
	}
	first := call.Args[0].Raw()
	for _, arg := range call.Args[1:] {
		if Equal(first, arg.Raw()) {
			return true, nil
		}
	}
	return false, nil
}

func helperNe(call Call) (any, error) {
	if err := call.arity(2); err != nil {
		return nil, err
	}
	return !Equal(call.Args[0].Raw(), call.Args[1].Raw()), nil
}

func ordered(name string, accept func(int) bool) Helper {
	return func(call Call) (any, error) {
		if len(call.Args) != 2 {
			return nil, fmt.Errorf("%s: want 2 arguments, got %d", name, len(call.Args))
		}
		return accept(Compare(call.Args[0].Raw(), call.Args[1].Raw())), nil
	}
}

// helperAnd returns the first falsy argument or the last one.
func helperAnd(call Call) (any, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("and: want at least 1 argument")
	}
	for _, arg := range call.Args {
		if !Truthy(arg) {
			return arg, nil
		}
	}
	return call.Args[len(call.Args)-1], nil
}

// helperOr returns the first truthy argument or the last one.
func helperOr(call Call) (any, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("or: want at least 1 argument")
	}
	for _, arg := range call.Args {
		if Truthy(arg) {
			return arg, nil
		}
	}
	return call.Args[len(call.Args)-1], nil
}

func helperNot(call Call) (any, error) {
	if err := call.arity(1); err != nil {
		return nil, err
	}
	return !Truthy(call.Args[0]), nil
}

func helperLen(call Call) (any, error) {
	if err := call.arity(1); err != nil {
		return nil, err
	}
	arg := call.Args[0]
	if arg.node != nil {
		return arg.node.Len(), nil
	}
	switch raw := arg.Raw().(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(raw), nil
	case []any:
		return len(raw), nil
	case map[string]any:
		return len(raw), nil
	default:
		return nil, fmt.Errorf("len: unsupported %T", raw)
	}
}

// helperIndex walks keys below its first argument, keeping the field path.
func helperIndex(call Call) (any, error) {
	if len(call.Args) == 0 {
		return nil, fmt.Errorf("index: want at least 1 argument")
	}
	cur := call.Args[0]
	for _, key := range call.Args[1:] {
		name, ok := keyString(key.Raw())
		if !ok {
			return nil, fmt.Errorf("index: invalid key %v", key.Raw())
		}
		next, err := cur.child(name)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		cur = next
	}
	return cur, nil
}

func helperFirst(call Call) (any, error) {
	loop, ok := call.Loop()
	if !ok {
		return nil, fmt.Errorf("first: called outside range")
	}
	return loop.First(), nil
}

func helperLast(call Call) (any, error) {
	loop, ok := call.Loop()
	if !ok {
		return nil, fmt.Errorf("last: called outside range")
	}
	return loop.Last(), nil
}

func helperLoopIndex(call Call) (any, error) {
	loop, ok := call.Loop()
	if !ok {
		return nil, fmt.Errorf("loopIndex: called outside range")
	}
	return loop.Index, nil
}
