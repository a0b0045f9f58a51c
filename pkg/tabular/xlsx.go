package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-docfill/pkg/datatree"
)

// ReadXLSX reads key/value rows from a workbook. Columns A, B and C hold
// key, value and comment. An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet string) ([]datatree.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: open workbook: %w", err)
	}
	defer f.Close()

	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("tabular: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %q: %w", sheet, err)
	}

	var rows []datatree.Row
	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}
		if row, ok := recordRow(record, i+1); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
