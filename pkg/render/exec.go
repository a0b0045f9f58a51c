package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"text/template/parse"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/extract"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// frame is one entry of the scope stack. prefix is the absolute data path
// of the scope; every unresolved reference inside it is reported below it.
type frame struct {
	prefix fieldpath.Path
	dot    Value
	loop   *Loop
}

type variable struct {
	name  string
	value Value
}

// state is the per-call evaluator. Nothing in it outlives a Render call.
type state struct {
	ctx        context.Context
	tpl        *extract.Template
	registry   *Registry
	directives markup.Directives
	logger     *slog.Logger
	data       *datatree.Node
	maxDepth   int

	out    strings.Builder
	frames []frame
	vars   []variable
	fields []markup.ResolvedField
	depth  int
}

func newState(ctx context.Context, r *Renderer, tpl *extract.Template, data *datatree.Node, logger *slog.Logger) *state {
	root := FieldValue(fieldpath.Path{}, data)
	return &state{
		ctx:        ctx,
		tpl:        tpl,
		registry:   r.registry,
		directives: r.directives,
		logger:     logger,
		data:       data,
		maxDepth:   r.maxDepth,
		frames:     []frame{{dot: root}},
		vars:       []variable{{name: "$", value: root}},
	}
}

func (s *state) top() frame { return s.frames[len(s.frames)-1] }

func (s *state) push(f frame) { s.frames = append(s.frames, f) }

func (s *state) popFrame() { s.frames = s.frames[:len(s.frames)-1] }

func (s *state) mark() int { return len(s.vars) }

func (s *state) pop(mark int) { s.vars = s.vars[:mark] }

// loop returns the innermost enclosing iteration, if any.
func (s *state) loop() *Loop {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].loop != nil {
			return s.frames[i].loop
		}
	}
	return nil
}

func (s *state) errorf(node parse.Node, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	var exec *ExecError
	if errors.As(err, &exec) {
		return exec
	}
	var location, snippet string
	if node != nil {
		location, snippet = s.tpl.Root().ErrorContext(node)
	}
	return &ExecError{Template: s.tpl.Name(), Location: location, Context: snippet, Err: err}
}

func (s *state) walk(node parse.Node) error {
	switch n := node.(type) {
	case nil:
		return nil
	case *parse.ListNode:
		if n == nil {
			return nil
		}
		for _, child := range n.Nodes {
			if err := s.walk(child); err != nil {
				return err
			}
		}
	case *parse.TextNode:
		s.out.Write(n.Text)
	case *parse.CommentNode:
	case *parse.ActionNode:
		v, err := s.evalPipeline(n.Pipe)
		if err != nil {
			return err
		}
		if len(n.Pipe.Decl) == 0 {
			s.print(v)
		}
	case *parse.IfNode:
		return s.walkIf(n)
	case *parse.WithNode:
		return s.walkWith(n)
	case *parse.RangeNode:
		return s.walkRange(n)
	case *parse.TemplateNode:
		return s.walkTemplate(n)
	case *parse.BreakNode:
		return errBreak
	case *parse.ContinueNode:
		return errContinue
	default:
		return s.errorf(node, "unsupported node %s", node)
	}
	return nil
}

func (s *state) walkIf(n *parse.IfNode) error {
	defer s.pop(s.mark())
	v, err := s.evalPipeline(n.Pipe)
	if err != nil {
		return err
	}
	if Truthy(v) {
		return s.walk(n.List)
	}
	return s.walk(n.ElseList)
}

// walkWith enters an object scope. An absent or empty target skips the
// body: the else branch runs when present, otherwise the scope's own path
// is flagged Missing.
func (s *state) walkWith(n *parse.WithNode) error {
	defer s.pop(s.mark())
	v, err := s.evalPipeline(n.Pipe)
	if err != nil {
		return err
	}
	if !v.Empty() {
		s.push(frame{prefix: s.scopePrefix(v, n.Pipe), dot: v})
		err := s.walk(n.List)
		s.popFrame()
		return err
	}
	if n.ElseList != nil {
		return s.walk(n.ElseList)
	}
	if v.Field {
		s.unresolved(v)
		s.emit(markup.Missing(v.Path))
	}
	return nil
}

// scopePrefix names a scope: fields keep their own path, other values sit
// below the current scope under their alias when one is declared.
func (s *state) scopePrefix(v Value, pipe *parse.PipeNode) fieldpath.Path {
	if v.Field {
		return v.Path
	}
	prefix := s.top().prefix
	if len(pipe.Decl) > 0 {
		if alias := strings.TrimPrefix(pipe.Decl[0].Ident[0], "$"); alias != "" {
			return prefix.AppendName(alias)
		}
	}
	return prefix
}

// walkRange iterates a list, or a map keyed by non-negative integers in
// ascending key order. Each element is a scope addressed by its index.
func (s *state) walkRange(n *parse.RangeNode) error {
	defer s.pop(s.mark())
	v, err := s.evalCommands(n.Pipe)
	if err != nil {
		return err
	}

	entries, ok := v.node.Sequence()
	if !ok || len(entries) == 0 {
		return s.walk(n.ElseList)
	}

	for pos, entry := range entries {
		elem := FieldValue(v.Path.AppendIndex(entry.Index), entry.Node)
		s.push(frame{
			prefix: elem.Path,
			dot:    elem,
			loop:   &Loop{Index: entry.Index, Position: pos, Count: len(entries)},
		})
		inner := s.mark()
		switch len(n.Pipe.Decl) {
		case 1:
			s.setVar(n.Pipe.Decl[0], elem, n.Pipe.IsAssign)
		case 2:
			s.setVar(n.Pipe.Decl[0], Literal(entry.Index), n.Pipe.IsAssign)
			s.setVar(n.Pipe.Decl[1], elem, n.Pipe.IsAssign)
		}
		err := s.walk(n.List)
		s.pop(inner)
		s.popFrame()

		if errors.Is(err, errBreak) {
			break
		}
		if err != nil && !errors.Is(err, errContinue) {
			return err
		}
	}
	return nil
}

func (s *state) walkTemplate(n *parse.TemplateNode) error {
	tree, ok := s.tpl.Lookup(n.Name)
	if !ok || tree.Root == nil {
		return s.errorf(n, "no such template %q", n.Name)
	}
	if s.depth >= s.maxDepth {
		return s.errorf(n, "exceeded maximum template depth (%d)", s.maxDepth)
	}

	var v Value
	if n.Pipe != nil {
		var err error
		if v, err = s.evalPipeline(n.Pipe); err != nil {
			return err
		}
	}
	prefix := s.top().prefix
	if v.Field {
		prefix = v.Path
	}

	saved := s.vars
	s.vars = []variable{{name: "$", value: v}}
	s.push(frame{prefix: prefix, dot: v})
	s.depth++

	err := s.walk(tree.Root)

	s.depth--
	s.popFrame()
	s.vars = saved
	return err
}

func (s *state) evalPipeline(pipe *parse.PipeNode) (Value, error) {
	if pipe == nil {
		return Value{}, nil
	}
	v, err := s.evalCommands(pipe)
	if err != nil {
		return Value{}, err
	}
	for _, decl := range pipe.Decl {
		s.setVar(decl, v, pipe.IsAssign)
	}
	return v, nil
}

func (s *state) evalCommands(pipe *parse.PipeNode) (Value, error) {
	var final Value
	for i, cmd := range pipe.Cmds {
		v, err := s.evalCommand(cmd, final, i > 0)
		if err != nil {
			return Value{}, err
		}
		final = v
	}
	return final, nil
}

func (s *state) evalCommand(cmd *parse.CommandNode, final Value, piped bool) (Value, error) {
	if len(cmd.Args) == 0 {
		return Value{}, s.errorf(cmd, "empty command")
	}
	if ident, ok := cmd.Args[0].(*parse.IdentifierNode); ok {
		return s.call(ident, cmd.Args[1:], final, piped)
	}
	if piped || len(cmd.Args) > 1 {
		return Value{}, s.errorf(cmd, "can't give argument to non-function %s", cmd.Args[0])
	}
	return s.evalArg(cmd.Args[0])
}

func (s *state) evalArg(node parse.Node) (Value, error) {
	switch n := node.(type) {
	case *parse.DotNode:
		return s.top().dot, nil
	case *parse.FieldNode:
		return s.lookup(n.Ident), nil
	case *parse.VariableNode:
		v, ok := s.variable(n.Ident[0])
		if !ok {
			return Value{}, s.errorf(n, "undefined variable %s", n.Ident[0])
		}
		return s.walkFields(n, v, n.Ident[1:])
	case *parse.ChainNode:
		v, err := s.evalArg(n.Node)
		if err != nil {
			return Value{}, err
		}
		return s.walkFields(n, v, n.Field)
	case *parse.PipeNode:
		defer s.pop(s.mark())
		return s.evalPipeline(n)
	case *parse.IdentifierNode:
		return s.call(n, nil, Value{}, false)
	case *parse.StringNode:
		return Literal(n.Text), nil
	case *parse.NumberNode:
		switch {
		case n.IsInt:
			return Literal(int(n.Int64)), nil
		case n.IsFloat:
			return Literal(n.Float64), nil
		default:
			return Value{}, s.errorf(n, "unsupported number %s", n.Text)
		}
	case *parse.BoolNode:
		return Literal(n.True), nil
	case *parse.NilNode:
		return Literal(nil), nil
	default:
		return Value{}, s.errorf(node, "can't evaluate %s", node)
	}
}

func (s *state) walkFields(node parse.Node, v Value, idents []string) (Value, error) {
	for _, ident := range idents {
		next, err := v.child(ident)
		if err != nil {
			return Value{}, s.errorf(node, "%v", err)
		}
		v = next
	}
	return v, nil
}

// lookup resolves a field reference against the scope stack, innermost
// first. A reference found nowhere is addressed below the innermost scope.
func (s *state) lookup(idents []string) Value {
	for i := len(s.frames) - 1; i >= 0; i-- {
		dot := s.frames[i].dot
		if dot.node == nil {
			continue
		}
		if _, ok := dot.node.Child(idents[0]); !ok {
			continue
		}
		v := dot
		for _, ident := range idents {
			v, _ = v.child(ident)
		}
		return v
	}

	path := s.top().prefix
	for _, ident := range idents {
		path = path.AppendName(ident)
	}
	return Value{Path: path, Field: true}
}

func (s *state) variable(name string) (Value, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			return s.vars[i].value, true
		}
	}
	return Value{}, false
}

func (s *state) setVar(decl *parse.VariableNode, v Value, assign bool) {
	name := decl.Ident[0]
	if assign {
		for i := len(s.vars) - 1; i >= 0; i-- {
			if s.vars[i].name == name {
				s.vars[i].value = v
				return
			}
		}
	}
	s.vars = append(s.vars, variable{name: name, value: v})
}

func (s *state) call(ident *parse.IdentifierNode, args []parse.Node, final Value, piped bool) (Value, error) {
	helper, ok := s.registry.Lookup(ident.Ident)
	if !ok {
		return Value{}, s.errorf(ident, "function %q not defined", ident.Ident)
	}

	values := make([]Value, 0, len(args)+1)
	for _, arg := range args {
		v, err := s.evalArg(arg)
		if err != nil {
			return Value{}, err
		}
		values = append(values, v)
	}
	if piped {
		values = append(values, final)
	}

	out, err := helper(Call{
		Name: ident.Ident,
		Args: values,
		ctx:  s.ctx,
		dot:  s.top().dot,
		loop: s.loop(),
	})
	if err != nil {
		return Value{}, s.errorf(ident, "%w", err)
	}
	return Literal(out), nil
}

// print writes the value of an output action.
func (s *state) print(v Value) {
	if v.Field {
		field := v.field()
		if !v.found {
			s.unresolved(v)
		}
		s.emit(field)
		return
	}
	switch raw := v.raw.(type) {
	case nil:
	case markup.ResolvedField:
		s.emit(raw)
	case *markup.ResolvedField:
		if raw != nil {
			s.emit(*raw)
		}
	case markup.HTML:
		s.out.WriteString(string(raw))
	default:
		s.out.WriteString(html.EscapeString(markup.Text(raw)))
	}
}

func (s *state) emit(field markup.ResolvedField) {
	s.fields = append(s.fields, field)
	s.out.WriteString(string(s.directives.Render(field)))
}

func (s *state) unresolved(v Value) {
	if v.found {
		return
	}
	attrs := []any{"template", s.tpl.Name(), "field", v.Path.String()}
	if hint, ok := suggest(s.data, v.Path); ok {
		attrs = append(attrs, "suggestion", hint.String())
	}
	s.logger.Debug("render: unresolved field", attrs...)
}
