package orchestrator

import (
	"context"
	"fmt"
	"strings"
)

const (
	formatHTML = "html"
	formatPDF  = "pdf"
	formatJSON = "json"
)

// PDFConverter turns a written HTML document into a PDF. Conversion is left
// to the caller; without a converter the "pdf" format is rejected.
type PDFConverter interface {
	Convert(ctx context.Context, htmlPath, pdfPath string) error
}

// PDFConverterFunc adapts a function to PDFConverter.
type PDFConverterFunc func(ctx context.Context, htmlPath, pdfPath string) error

// Convert calls f.
func (f PDFConverterFunc) Convert(ctx context.Context, htmlPath, pdfPath string) error {
	return f(ctx, htmlPath, pdfPath)
}

// checkFormat reports whether f can be produced. Besides html, json and pdf
// the template's own extension is accepted and receives the filled body.
func checkFormat(f, sourceFormat string, hasPDF bool) error {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), ".")) {
	case formatHTML, "htm", formatJSON:
		return nil
	case formatPDF:
		if !hasPDF {
			return fmt.Errorf("orchestrator: format %q requires a PDF converter", f)
		}
		return nil
	case "":
		return fmt.Errorf("orchestrator: empty output format")
	case sourceFormat:
		return nil
	default:
		return fmt.Errorf("orchestrator: unsupported output format %q", f)
	}
}
