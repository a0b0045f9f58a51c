package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

var header = []string{"key", "value", "comment"}

// WriteTemplate writes a CSV dataset skeleton with one empty row per path.
func WriteTemplate(w io.Writer, paths []fieldpath.Path) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("tabular: write template: %w", err)
	}
	for _, p := range paths {
		if p.IsRoot() {
			continue
		}
		if err := writer.Write([]string{p.String(), "", ""}); err != nil {
			return fmt.Errorf("tabular: write template: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("tabular: write template: %w", err)
	}
	return nil
}

// WriteTemplateXLSX writes the same skeleton as a workbook.
func WriteTemplateXLSX(w io.Writer, paths []fieldpath.Path) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	row := 1
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("tabular: write workbook: %w", err)
	}
	for _, p := range paths {
		if p.IsRoot() {
			continue
		}
		row++
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, p.String()); err != nil {
			return fmt.Errorf("tabular: write workbook: %w", err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("tabular: write workbook: %w", err)
	}
	return nil
}
