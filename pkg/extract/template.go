// Package extract parses templates and statically collects the data fields
// they reference, so a dataset can be seeded with the template's expected
// shape before any data is bound.
package extract

import (
	"fmt"
	"strings"
	"text/template/parse"
)

// Template is a parsed template set: the root tree plus any {{define}}
// blocks it declares.
type Template struct {
	name  string
	text  string
	trees map[string]*parse.Tree
}

// Parse parses text with Go template action syntax. Helper names are not
// checked here; they are bound by the renderer's registry at render time.
func Parse(name, text string) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "document"
	}

	tree := parse.New(name)
	tree.Mode = parse.SkipFuncCheck | parse.ParseComments
	trees := make(map[string]*parse.Tree)
	if _, err := tree.Parse(text, "", "", trees); err != nil {
		return nil, fmt.Errorf("extract: parse template %q: %w", name, err)
	}
	if _, ok := trees[name]; !ok {
		// a template consisting only of {{define}} blocks leaves no root tree
		trees[name] = tree
	}

	return &Template{name: name, text: text, trees: trees}, nil
}

// Name returns the root template name.
func (t *Template) Name() string { return t.name }

// Text returns the source text.
func (t *Template) Text() string { return t.text }

// Root returns the root parse tree.
func (t *Template) Root() *parse.Tree { return t.trees[t.name] }

// Lookup returns a named tree declared with {{define}}.
func (t *Template) Lookup(name string) (*parse.Tree, bool) {
	tree, ok := t.trees[name]
	return tree, ok
}
