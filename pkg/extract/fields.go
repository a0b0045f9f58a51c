package extract

import (
	"strconv"
	"text/template/parse"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// Fields lists the data references found in a template.
type Fields struct {
	// Roots holds the distinct top-level identifiers, in order of first use.
	Roots []string
	// Paths holds statically-qualified leaf references: fields inside a
	// {{with}} are prefixed by its target, fields inside a {{range}} are
	// addressed through index 0. Paths that only prefix another reference
	// are omitted.
	Paths []fieldpath.Path
}

// Empty reports whether no references were found.
func (f Fields) Empty() bool { return len(f.Paths) == 0 }

// Strings returns Paths in canonical text form.
func (f Fields) Strings() []string {
	out := make([]string, 0, len(f.Paths))
	for _, p := range f.Paths {
		out = append(out, p.String())
	}
	return out
}

// Extract parses text and collects its field references. It fails open: on a
// parse error the returned Fields is empty and the error is reported so the
// caller can continue with an externally supplied dataset.
func Extract(name, text string) (Fields, error) {
	tpl, err := Parse(name, text)
	if err != nil {
		return Fields{}, err
	}
	return Collect(tpl), nil
}

// Collect walks tpl once and returns its field references.
func Collect(tpl *Template) Fields {
	if tpl == nil || tpl.Root() == nil {
		return Fields{}
	}
	c := &collector{
		tpl:      tpl,
		seen:     make(map[string]struct{}),
		visiting: map[string]bool{tpl.Name(): true},
	}
	root := scope{known: true}
	c.vars = []binding{{name: "$", scope: root}}
	c.walk(tpl.Root().Root, root)
	return c.result()
}

// scope is the static view of dot: the data path it points at, when known.
type scope struct {
	path  fieldpath.Path
	known bool
}

func (s scope) child(ident string) scope {
	if !s.known {
		return s
	}
	return scope{path: s.path.AppendName(ident), known: true}
}

type binding struct {
	name  string
	scope scope
}

type collector struct {
	tpl      *Template
	seen     map[string]struct{}
	order    []fieldpath.Path
	vars     []binding
	visiting map[string]bool
}

func (c *collector) record(s scope) {
	if !s.known || s.path.IsRoot() {
		return
	}
	key := s.path.String()
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.order = append(c.order, s.path)
}

func (c *collector) walk(node parse.Node, dot scope) {
	switch n := node.(type) {
	case nil:
		return
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			c.walk(child, dot)
		}
	case *parse.ActionNode:
		c.pipe(n.Pipe, dot)
	case *parse.IfNode:
		mark := len(c.vars)
		c.pipe(n.Pipe, dot)
		c.walk(n.List, dot)
		c.walk(n.ElseList, dot)
		c.vars = c.vars[:mark]
	case *parse.WithNode:
		mark := len(c.vars)
		target := c.pipe(n.Pipe, dot)
		c.walk(n.List, target)
		c.walk(n.ElseList, dot)
		c.vars = c.vars[:mark]
	case *parse.RangeNode:
		mark := len(c.vars)
		target := c.commands(n.Pipe, dot)
		elem := scope{known: target.known}
		if target.known {
			elem.path = target.path.AppendIndex(0)
		}
		switch len(n.Pipe.Decl) {
		case 1:
			c.declare(n.Pipe.Decl[0], elem, n.Pipe.IsAssign)
		case 2:
			c.declare(n.Pipe.Decl[0], scope{}, n.Pipe.IsAssign)
			c.declare(n.Pipe.Decl[1], elem, n.Pipe.IsAssign)
		}
		c.walk(n.List, elem)
		c.walk(n.ElseList, dot)
		c.vars = c.vars[:mark]
	case *parse.TemplateNode:
		arg := scope{}
		if n.Pipe != nil {
			arg = c.pipe(n.Pipe, dot)
		}
		tree, ok := c.tpl.Lookup(n.Name)
		if !ok || c.visiting[n.Name] {
			return
		}
		c.visiting[n.Name] = true
		saved := c.vars
		c.vars = []binding{{name: "$", scope: arg}}
		c.walk(tree.Root, arg)
		c.vars = saved
		delete(c.visiting, n.Name)
	}
}

// pipe evaluates a pipeline statically and binds its declarations.
func (c *collector) pipe(p *parse.PipeNode, dot scope) scope {
	if p == nil {
		return scope{}
	}
	result := c.commands(p, dot)
	for _, decl := range p.Decl {
		c.declare(decl, result, p.IsAssign)
	}
	return result
}

func (c *collector) commands(p *parse.PipeNode, dot scope) scope {
	if p == nil {
		return scope{}
	}
	result := scope{}
	for _, cmd := range p.Cmds {
		result = c.command(cmd, dot)
	}
	return result
}

func (c *collector) command(cmd *parse.CommandNode, dot scope) scope {
	if cmd == nil || len(cmd.Args) == 0 {
		return scope{}
	}
	if ident, ok := cmd.Args[0].(*parse.IdentifierNode); ok {
		args := make([]scope, 0, len(cmd.Args)-1)
		for _, arg := range cmd.Args[1:] {
			args = append(args, c.arg(arg, dot))
		}
		if ident.Ident == "index" && len(args) > 0 {
			s := indexScope(args[0], cmd.Args[2:])
			c.record(s)
			return s
		}
		return scope{}
	}

	result := c.arg(cmd.Args[0], dot)
	for _, arg := range cmd.Args[1:] {
		c.arg(arg, dot)
	}
	return result
}

func (c *collector) arg(node parse.Node, dot scope) scope {
	switch n := node.(type) {
	case *parse.DotNode:
		c.record(dot)
		return dot
	case *parse.FieldNode:
		s := dot
		for _, ident := range n.Ident {
			s = s.child(ident)
		}
		c.record(s)
		return s
	case *parse.VariableNode:
		s := c.lookup(n.Ident[0])
		for _, ident := range n.Ident[1:] {
			s = s.child(ident)
		}
		c.record(s)
		return s
	case *parse.ChainNode:
		s := c.arg(n.Node, dot)
		for _, ident := range n.Field {
			s = s.child(ident)
		}
		c.record(s)
		return s
	case *parse.PipeNode:
		return c.pipe(n, dot)
	default:
		return scope{}
	}
}

func indexScope(base scope, keys []parse.Node) scope {
	s := base
	for _, key := range keys {
		switch k := key.(type) {
		case *parse.NumberNode:
			if !k.IsInt || k.Int64 < 0 {
				return scope{}
			}
			s = s.child(strconv.FormatInt(k.Int64, 10))
		case *parse.StringNode:
			if k.Text == "" {
				return scope{}
			}
			s = s.child(k.Text)
		default:
			return scope{}
		}
	}
	return s
}

func (c *collector) declare(v *parse.VariableNode, s scope, assign bool) {
	name := v.Ident[0]
	if assign {
		for i := len(c.vars) - 1; i >= 0; i-- {
			if c.vars[i].name == name {
				c.vars[i].scope = s
				return
			}
		}
	}
	c.vars = append(c.vars, binding{name: name, scope: s})
}

func (c *collector) lookup(name string) scope {
	for i := len(c.vars) - 1; i >= 0; i-- {
		if c.vars[i].name == name {
			return c.vars[i].scope
		}
	}
	return scope{}
}

func (c *collector) result() Fields {
	var out Fields
	roots := make(map[string]struct{})
	for _, p := range c.order {
		if prefixesOther(p, c.order) {
			continue
		}
		out.Paths = append(out.Paths, p)
		if root := p.Root(); root != "" {
			if _, ok := roots[root]; !ok {
				roots[root] = struct{}{}
				out.Roots = append(out.Roots, root)
			}
		}
	}
	return out
}

func prefixesOther(p fieldpath.Path, all []fieldpath.Path) bool {
	for _, other := range all {
		if other.Len() > p.Len() && other.HasPrefix(p) {
			return true
		}
	}
	return false
}
