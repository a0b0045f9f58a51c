// Package render executes a parsed template against a data tree while
// tracking the absolute data path of every scope. Each value it prints is
// wrapped in a placeholder span that marks it imported or missing.
package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-docfill/internal/ctxlog"
	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/extract"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// DefaultMaxDepth bounds nested {{template}} calls.
const DefaultMaxDepth = 1000

// Renderer binds templates to data trees. A Renderer holds no per-render
// state and may be shared between goroutines.
type Renderer struct {
	registry   *Registry
	directives markup.Directives
	sanitize   bool
	maxDepth   int
	initErr    error
}

// New constructs a Renderer. Without WithRegistry the builtins and the
// default formatters are registered. A helper that cannot be registered is
// reported by Err and by every Render call.
func New(opts ...Option) *Renderer {
	cfg := options{directives: markup.DefaultDirectives(), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	reg, err := cfg.buildRegistry()
	return &Renderer{
		registry:   reg,
		directives: cfg.directives.WithDefaults(),
		sanitize:   cfg.sanitize,
		maxDepth:   cfg.maxDepth,
		initErr:    err,
	}
}

// Err returns the error recorded while building the helper registry.
func (r *Renderer) Err() error { return r.initErr }

// Registry returns the renderer's helper registry.
func (r *Renderer) Registry() *Registry { return r.registry }

// Directives returns the placeholder directives in use.
func (r *Renderer) Directives() markup.Directives { return r.directives }

// Result is the outcome of one render.
type Result struct {
	Output markup.HTML
	// Fields lists every placeholder emitted, in output order.
	Fields []markup.ResolvedField
}

// Imported counts imported placeholders.
func (r Result) Imported() int { return r.count(markup.StateImported) }

// Missing counts missing placeholders.
func (r Result) Missing() int { return r.count(markup.StateMissing) }

// MissingPaths returns the distinct paths of missing placeholders in output
// order.
func (r Result) MissingPaths() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range r.Fields {
		if f.State != markup.StateMissing {
			continue
		}
		key := f.Path.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func (r Result) count(state markup.State) int {
	n := 0
	for _, f := range r.Fields {
		if f.State == state {
			n++
		}
	}
	return n
}

// Render executes tpl against data. A nil data tree renders every reference
// as missing. Rendering runs to completion once started; ctx is checked on
// entry and supplies the logger.
func (r *Renderer) Render(ctx context.Context, tpl *extract.Template, data *datatree.Node) (Result, error) {
	if r.initErr != nil {
		return Result{}, r.initErr
	}
	if tpl == nil || tpl.Root() == nil {
		return Result{}, ErrNilTemplate
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if data == nil {
		data = datatree.NewMap()
	}

	logger := ctxlog.FromContext(ctx)
	s := newState(ctx, r, tpl, data, logger)
	if err := s.walk(tpl.Root().Root); err != nil {
		return Result{}, err
	}

	out := markup.HTML(s.out.String())
	if r.sanitize {
		out = Sanitize(out)
	}
	res := Result{Output: out, Fields: s.fields}
	logger.Debug("render: template rendered",
		"template", tpl.Name(),
		"imported", res.Imported(),
		"missing", res.Missing(),
	)
	return res, nil
}

// RenderString parses text and renders it.
func (r *Renderer) RenderString(ctx context.Context, name, text string, data *datatree.Node) (Result, error) {
	tpl, err := extract.Parse(name, text)
	if err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}
	return r.Render(ctx, tpl, data)
}
