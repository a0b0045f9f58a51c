// Package layout wraps a rendered body in the HTML document shell. Shells
// are pongo2 templates, loaded from the embedded defaults or from a
// directory supplied by the caller.
package layout

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-docfill/pkg/markup"
)

//go:embed templates/*.tpl
var embedded embed.FS

// DefaultTemplate is the shell used when none is configured.
const DefaultTemplate = "document"

// DefaultTemplates returns the embedded shell templates.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	document   string
	globalData map[string]any
}

// WithBaseDir loads shells from a directory on disk. It takes precedence over
// the embedded templates for names present in both.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads shells from files instead of the embedded defaults.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the template file extension (default ".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithDocument selects the shell template by name.
func WithDocument(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.document = trimmed
		}
	}
}

// WithGlobalData seeds values visible to every shell.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Page is the data a shell renders.
type Page struct {
	Title      string
	Lang       string
	Body       markup.HTML
	Highlight  bool
	Directives markup.Directives
	Imported   int
	Missing    int
}

func (p Page) context() pongo2.Context {
	d := p.Directives.WithDefaults()
	lang := strings.TrimSpace(p.Lang)
	if lang == "" {
		lang = "de"
	}
	return pongo2.Context{
		"title":          p.Title,
		"lang":           lang,
		"body":           string(p.Body),
		"highlight":      p.Highlight,
		"imported_class": d.ImportedClass,
		"missing_class":  d.MissingClass,
		"imported":       p.Imported,
		"missing":        p.Missing,
	}
}

// Engine renders shells from a pongo2 template set.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
	document  string
}

// New constructs an Engine. Without WithFS or WithBaseDir the embedded
// shells are used.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl", document: DefaultTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("layout: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	} else {
		loaders = append(loaders, pongo2.NewFSLoader(DefaultTemplates()))
	}

	engine := &Engine{
		set:       pongo2.NewSet("docfill", loaders...),
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
		document:  cfg.document,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("layout: apply global data: %w", err)
	}
	return engine, nil
}

// Render wraps page in the configured shell.
func (e *Engine) Render(page Page, out ...io.Writer) (string, error) {
	return e.RenderTemplate(e.document, page.context(), out...)
}

// RenderTemplate renders the named shell with data.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("layout: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

// RenderString renders inline shell source.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("layout: engine is nil")
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("layout: parse template string: %w", err)
	}
	return e.execute(tmpl, "inline", data, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, name string, data any, out []io.Writer) (string, error) {
	viewContext, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("layout: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("layout: execute template %q: %w", name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// GlobalContext merges data into the values visible to every shell.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("layout: engine is nil")
	}
	if data == nil {
		return nil
	}
	globalCtx, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out := pongo2.Context{}
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

var filtersOnce sync.Once

// registerDefaultFilters installs the shell filters. pongo2 filters are
// process wide, so registration happens once.
func registerDefaultFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("unwrap") {
			_ = pongo2.RegisterFilter("unwrap", filterUnwrap)
		}
	})
}

// filterUnwrap reduces placeholder markup to its text, for contexts such as
// <title> where spans cannot appear.
func filterUnwrap(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	value, _, ok := markup.DefaultDirectives().Unwrap(in.String())
	if !ok {
		return pongo2.AsValue(in.String()), nil
	}
	return pongo2.AsValue(value), nil
}
