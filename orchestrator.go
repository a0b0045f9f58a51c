// Package docfill fills document templates from flat key/value datasets and
// tags every value as imported or missing. The subpackages hold the pipeline
// stages; this package re-exports the common entry points.
package docfill

import (
	"context"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/orchestrator"
)

// Request describes one document to fill; alias exported via the root
// package for convenience.
type Request = orchestrator.Request

// Document is the in-memory result of a fill.
type Document = orchestrator.Document

// Outcome pairs a document with the files written for it.
type Outcome = orchestrator.Outcome

// Row is one dataset entry.
type Row = datatree.Row

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Fill renders the template at templatePath with the dataset at dataPath and
// returns the document without writing it.
func Fill(ctx context.Context, templatePath, dataPath string, options ...orchestrator.Option) (Document, error) {
	return orchestrator.New(options...).Generate(ctx, Request{
		TemplatePath: templatePath,
		DataPath:     dataPath,
	})
}

// FillString renders inline template text against rows.
func FillString(ctx context.Context, template string, rows []Row, options ...orchestrator.Option) (Document, error) {
	return orchestrator.New(options...).Generate(ctx, Request{
		Template: template,
		Rows:     rows,
	})
}

// WriteFiles fills the template and writes every configured format next to
// it, choosing the first free revision.
func WriteFiles(ctx context.Context, templatePath, dataPath string, options ...orchestrator.Option) (Outcome, error) {
	return orchestrator.New(options...).Write(ctx, Request{
		TemplatePath: templatePath,
		DataPath:     dataPath,
	})
}
