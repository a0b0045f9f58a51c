// Package tabular reads the flat key/value datasets documents are filled
// from. Every reader produces datatree rows in source order.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-docfill/pkg/datatree"
)

// ReadCSV parses key,value[,comment] records. Lines starting with '#' are
// comments, an optional key,value header is skipped and rows with an empty
// key are ignored.
func ReadCSV(r io.Reader) ([]datatree.Row, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var rows []datatree.Row
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
			if isHeader(record) {
				continue
			}
		}
		if row, ok := recordRow(record, line); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func isHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "key") &&
		strings.EqualFold(strings.TrimSpace(record[1]), "value")
}

func recordRow(record []string, line int) (datatree.Row, bool) {
	if len(record) == 0 {
		return datatree.Row{}, false
	}
	key := strings.TrimSpace(record[0])
	if key == "" {
		return datatree.Row{}, false
	}
	row := datatree.Row{Key: key, Value: "", Line: line}
	if len(record) > 1 {
		row.Value = record[1]
	}
	if len(record) > 2 {
		row.Comment = strings.TrimSpace(strings.Join(record[2:], ","))
	}
	return row, true
}
