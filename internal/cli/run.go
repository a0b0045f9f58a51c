package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-docfill/internal/ctxlog"
	"github.com/goliatone/go-docfill/pkg/config"
	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/orchestrator"
	"github.com/goliatone/go-docfill/pkg/prompt"
	"github.com/goliatone/go-docfill/pkg/tabular"
)

// Run executes opts. Documents and dumps go to out. The driver is only used
// in interactive mode and may be nil otherwise.
func Run(ctx context.Context, opts *Options, out io.Writer, driver prompt.Driver) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	if opts.Interactive {
		if driver == nil {
			return &ExitError{Code: 2, Message: "interactive mode requires a terminal"}
		}
		if err := completeInputs(ctx, opts, driver); err != nil {
			return err
		}
	}

	var filler orchestrator.Filler
	if opts.Interactive {
		filler = func(ctx context.Context, paths []fieldpath.Path, rows []datatree.Row) ([]datatree.Row, error) {
			return prompt.FillMissing(ctx, driver, paths, rows)
		}
	}

	orch := orchestrator.New(
		orchestrator.WithConfig(cfg),
		orchestrator.WithFiller(filler),
	)
	req := orchestrator.Request{
		TemplatePath: opts.TemplatePath,
		DataPath:     opts.DataPath,
		OutputDir:    opts.OutputDir,
		Formats:      opts.Formats,
		Suffix:       opts.Suffix,
		Highlight:    opts.Highlight,
		Title:        opts.Title,
	}

	switch {
	case opts.DataTemplate != "":
		return writeDataTemplate(ctx, orch, req, opts.DataTemplate)
	case opts.DumpTree:
		doc, err := orch.Generate(ctx, req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Tree)
	case opts.Stdout:
		doc, err := orch.Generate(ctx, req)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, doc.HTML)
		return err
	}

	outcome, err := orch.Write(ctx, req)
	if err != nil {
		return err
	}
	for _, f := range outcome.Files.Formats() {
		fmt.Fprintln(out, outcome.Files.Paths[f])
	}
	result := outcome.Document.Result
	ctxlog.FromContext(ctx).Info("fields resolved",
		"imported", result.Imported(),
		"missing", result.Missing(),
		"revision", outcome.Files.Revision,
	)
	if missing := result.MissingPaths(); len(missing) > 0 && opts.Interactive {
		_ = driver.Info(ctx, fmt.Sprintf("%d field(s) still missing: %s", len(missing), strings.Join(missing, ", ")))
	}
	return nil
}

func loadConfig(opts *Options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.Sheet != "" {
		cfg.Data.Sheet = opts.Sheet
	}
	if opts.NoLayout {
		cfg.Layout.Disabled = true
	}
	return cfg, nil
}

func completeInputs(ctx context.Context, opts *Options, driver prompt.Driver) error {
	if opts.TemplatePath == "" {
		answer, err := driver.Input(ctx, prompt.InputConfig{
			Message:   "Template file",
			Validator: fileExists,
		})
		if err != nil {
			return err
		}
		opts.TemplatePath = strings.TrimSpace(answer)
	}
	if opts.DataPath == "" {
		candidates := datasetsNear(opts.TemplatePath)
		if len(candidates) > 0 {
			choice, err := prompt.ChooseFile(ctx, driver, "Dataset", candidates)
			if err != nil {
				return err
			}
			opts.DataPath = choice
		}
	}
	return nil
}

func datasetsNear(templatePath string) []string {
	dir := filepath.Dir(templatePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xlsm", ".json", ".yaml", ".yml":
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	return out
}

func fileExists(path string) error {
	info, err := os.Stat(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func writeDataTemplate(ctx context.Context, orch *orchestrator.Orchestrator, req orchestrator.Request, target string) error {
	fields, err := orch.Inspect(ctx, req)
	if err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".xlsx":
		err = tabular.WriteTemplateXLSX(f, fields.Paths)
	default:
		err = tabular.WriteTemplate(f, fields.Paths)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("dataset template written", "path", target, "fields", len(fields.Paths))
	return nil
}
