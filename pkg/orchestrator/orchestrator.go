package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-docfill/internal/ctxlog"
	"github.com/goliatone/go-docfill/pkg/config"
	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/extract"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/layout"
	"github.com/goliatone/go-docfill/pkg/markup"
	"github.com/goliatone/go-docfill/pkg/output"
	"github.com/goliatone/go-docfill/pkg/render"
	"github.com/goliatone/go-docfill/pkg/tabular"
)

// RowLoader reads dataset rows from a file.
type RowLoader func(path string) ([]datatree.Row, error)

// Filler completes rows before they are merged, typically by prompting for
// the template paths the rows leave empty.
type Filler func(ctx context.Context, paths []fieldpath.Path, rows []datatree.Row) ([]datatree.Row, error)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithConfig replaces the default configuration. Components not injected
// explicitly are built from it.
func WithConfig(cfg config.Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// WithRenderer injects a preconfigured renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(o *Orchestrator) {
		o.renderer = r
	}
}

// WithLayout injects the document shell engine.
func WithLayout(engine *layout.Engine) Option {
	return func(o *Orchestrator) {
		o.layout = engine
	}
}

// WithResolver injects the output naming resolver.
func WithResolver(r *output.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithRowLoader replaces tabular.Load for dataset files.
func WithRowLoader(loader RowLoader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithFiller registers a Filler that runs after rows are loaded.
func WithFiller(f Filler) Option {
	return func(o *Orchestrator) {
		o.filler = f
	}
}

// WithPDFConverter enables the "pdf" output format.
func WithPDFConverter(c PDFConverter) Option {
	return func(o *Orchestrator) {
		o.pdf = c
	}
}

// Orchestrator coordinates the pipeline from template and dataset to written
// documents. Missing components are built from the configuration on first
// use.
type Orchestrator struct {
	cfg             config.Config
	renderer        *render.Renderer
	layout          *layout.Engine
	resolver        *output.Resolver
	loader          RowLoader
	filler          Filler
	pdf             PDFConverter
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{cfg: config.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Config returns the configuration in effect.
func (o *Orchestrator) Config() config.Config { return o.cfg }

// Request describes one document to fill.
type Request struct {
	// TemplatePath is the template file. It also names the outputs unless
	// Source is set.
	TemplatePath string
	// Template supplies the template text inline; TemplatePath is then only
	// used for naming.
	Template string

	// DataPath is the dataset file. Optional when Rows is supplied.
	DataPath string
	// Rows bypasses the loader. When both are set Rows are appended after the
	// file's rows.
	Rows []datatree.Row

	// Source overrides the identifier the output names derive from.
	Source string
	// OutputDir defaults to the configured directory, then to the source's.
	OutputDir string
	// Formats default to the configured formats.
	Formats []string
	// Suffix defaults to the configured suffix.
	Suffix string
	// Highlight marks the document as highlighted; the configured value
	// applies when false.
	Highlight bool
	// Title is shown in the document shell; defaults to the configured title
	// and then the template name.
	Title string
}

// Document is the in-memory result of Generate.
type Document struct {
	Name      string
	Template  *extract.Template
	Fields    extract.Fields
	Tree      *datatree.Node
	Result    render.Result
	HTML      string
	Highlight bool
}

// Body returns the rendered template without the shell.
func (d Document) Body() markup.HTML { return d.Result.Output }

// Outcome is the result of Write.
type Outcome struct {
	Document Document
	Files    output.FileSet
}

// Inspect parses the template and returns the fields it references.
func (o *Orchestrator) Inspect(ctx context.Context, req Request) (extract.Fields, error) {
	if err := o.ready(ctx); err != nil {
		return extract.Fields{}, err
	}
	tpl, err := o.template(req)
	if err != nil {
		return extract.Fields{}, err
	}
	return extract.Collect(tpl), nil
}

// Generate loads the template and dataset, merges the rows seeded with every
// template path, renders the body and wraps it in the document shell.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Document, error) {
	if err := o.ready(ctx); err != nil {
		return Document{}, err
	}
	logger := ctxlog.FromContext(ctx)

	tpl, err := o.template(req)
	if err != nil {
		return Document{}, err
	}
	fields := extract.Collect(tpl)

	rows, err := o.rows(req)
	if err != nil {
		return Document{}, err
	}
	if o.filler != nil {
		rows, err = o.filler(ctx, fields.Paths, rows)
		if err != nil {
			return Document{}, fmt.Errorf("orchestrator: fill rows: %w", err)
		}
	}

	tree, err := datatree.Merge(rows, fields.Paths)
	if err != nil {
		return Document{}, fmt.Errorf("orchestrator: merge rows: %w", err)
	}

	result, err := o.renderer.Render(ctx, tpl, tree)
	if err != nil {
		return Document{}, fmt.Errorf("orchestrator: render output: %w", err)
	}

	doc := Document{
		Name:      tpl.Name(),
		Template:  tpl,
		Fields:    fields,
		Tree:      tree,
		Result:    result,
		Highlight: req.Highlight || o.cfg.Highlight,
	}

	if o.cfg.Layout.Disabled {
		doc.HTML = string(result.Output)
	} else {
		doc.HTML, err = o.layout.Render(layout.Page{
			Title:      o.title(req, tpl),
			Lang:       o.cfg.Layout.Lang,
			Body:       result.Output,
			Highlight:  doc.Highlight,
			Directives: o.renderer.Directives(),
			Imported:   result.Imported(),
			Missing:    result.Missing(),
		})
		if err != nil {
			return Document{}, fmt.Errorf("orchestrator: render layout: %w", err)
		}
	}

	logger.Info("document generated",
		"template", doc.Name,
		"rows", len(rows),
		"imported", result.Imported(),
		"missing", result.Missing(),
	)
	return doc, nil
}

// Write generates the document, resolves a free revision and writes every
// requested format.
func (o *Orchestrator) Write(ctx context.Context, req Request) (Outcome, error) {
	doc, err := o.Generate(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = o.cfg.Output.Formats
	}
	sourceFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(o.source(req))), ".")
	for _, f := range formats {
		if err := checkFormat(f, sourceFormat, o.pdf != nil); err != nil {
			return Outcome{}, err
		}
	}

	files, err := o.resolver.Resolve(ctx, output.Request{
		Source:      o.source(req),
		Dir:         firstNonEmpty(req.OutputDir, o.cfg.Output.Dir),
		Formats:     formats,
		Suffix:      firstNonEmpty(req.Suffix, o.cfg.Output.Suffix),
		Highlighted: doc.Highlight,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("orchestrator: resolve output: %w", err)
	}
	if err := o.writeFiles(ctx, doc, files, sourceFormat); err != nil {
		return Outcome{}, err
	}
	return Outcome{Document: doc, Files: files}, nil
}

func (o *Orchestrator) writeFiles(ctx context.Context, doc Document, files output.FileSet, sourceFormat string) error {
	logger := ctxlog.FromContext(ctx)

	paths := files.Formats()
	if len(paths) > 0 {
		dir := filepath.Dir(files.Paths[paths[0]])
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("orchestrator: create output dir: %w", err)
		}
	}

	// pdf is converted from the written html, so it goes last.
	var pdfPath string
	for _, f := range paths {
		target := files.Paths[f]
		var data []byte
		switch {
		case f == formatPDF:
			pdfPath = target
			continue
		case f == formatHTML || f == "htm":
			data = []byte(doc.HTML)
		case f == formatJSON:
			encoded, err := doc.Tree.MarshalJSON()
			if err != nil {
				return fmt.Errorf("orchestrator: encode data tree: %w", err)
			}
			data = encoded
		case f == sourceFormat:
			data = []byte(doc.Body())
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("orchestrator: write %s: %w", target, err)
		}
		logger.Info("document written", "format", f, "path", target)
	}

	if pdfPath == "" {
		return nil
	}
	return o.convertPDF(ctx, doc, files, pdfPath)
}

func (o *Orchestrator) convertPDF(ctx context.Context, doc Document, files output.FileSet, pdfPath string) error {
	htmlPath, ok := files.Path(formatHTML)
	cleanup := false
	if !ok {
		tmp, err := os.CreateTemp(filepath.Dir(pdfPath), "docfill-*.html")
		if err != nil {
			return fmt.Errorf("orchestrator: stage html for pdf: %w", err)
		}
		htmlPath = tmp.Name()
		cleanup = true
		_, writeErr := tmp.WriteString(doc.HTML)
		closeErr := tmp.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(htmlPath)
			return fmt.Errorf("orchestrator: stage html for pdf: %w", err)
		}
	}
	if cleanup {
		defer os.Remove(htmlPath)
	}

	if err := o.pdf.Convert(ctx, htmlPath, pdfPath); err != nil {
		return fmt.Errorf("orchestrator: convert pdf: %w", err)
	}
	ctxlog.FromContext(ctx).Info("document written", "format", formatPDF, "path", pdfPath)
	return nil
}

func (o *Orchestrator) template(req Request) (*extract.Template, error) {
	name := strings.TrimSpace(req.TemplatePath)
	text := req.Template
	if text == "" {
		if name == "" {
			return nil, errors.New("orchestrator: template path or text is required")
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read template: %w", err)
		}
		text = string(data)
	}
	if name == "" {
		name = "inline"
	}
	tpl, err := extract.Parse(filepath.Base(name), text)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse template: %w", err)
	}
	return tpl, nil
}

func (o *Orchestrator) rows(req Request) ([]datatree.Row, error) {
	var rows []datatree.Row
	if path := strings.TrimSpace(req.DataPath); path != "" {
		loaded, err := o.loader(path)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load data: %w", err)
		}
		rows = loaded
	}
	return append(rows, req.Rows...), nil
}

func (o *Orchestrator) title(req Request, tpl *extract.Template) string {
	if t := firstNonEmpty(req.Title, o.cfg.Layout.Title); t != "" {
		return t
	}
	name := tpl.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (o *Orchestrator) source(req Request) string {
	return firstNonEmpty(req.Source, req.TemplatePath)
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}
	o.defaultsApplied = true

	if err := o.cfg.Validate(); err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: config: %w", err)
		return
	}

	if o.renderer == nil {
		loc, err := o.cfg.FormatLocale()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: locale: %w", err)
			return
		}
		directives := o.cfg.Directives()
		o.renderer = render.New(
			render.WithDirectives(directives),
			render.WithFormatter(format.New(loc, format.WithDirectives(directives))),
			render.WithSanitize(o.cfg.Sanitize),
		)
	}
	if o.layout == nil && !o.cfg.Layout.Disabled {
		engine, err := layout.New(
			layout.WithBaseDir(o.cfg.Layout.Dir),
			layout.WithDocument(o.cfg.Layout.Document),
		)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: layout: %w", err)
			return
		}
		o.layout = engine
	}
	if o.resolver == nil {
		o.resolver = output.NewResolver(
			output.WithRevisionMarker(o.cfg.Output.RevisionMarker),
			output.WithMaxRevision(o.cfg.Output.MaxRevision),
		)
	}
	if o.loader == nil {
		sheet := o.cfg.Data.Sheet
		o.loader = func(path string) ([]datatree.Row, error) {
			return tabular.Load(path, tabular.WithSheet(sheet))
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
