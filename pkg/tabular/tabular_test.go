package tabular_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/tabular"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffkey,value,comment\n" +
		"# customer block\n" +
		"customer.name,Ada,primary contact\n" +
		"items[0].sku,\"A,1\"\n" +
		"\n" +
		"items[1].sku,null\n" +
		",orphan\n" +
		"note\n"

	rows, err := tabular.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	want := []datatree.Row{
		{Key: "customer.name", Value: "Ada", Comment: "primary contact", Line: 3},
		{Key: "items[0].sku", Value: "A,1", Line: 4},
		{Key: "items[1].sku", Value: "null", Line: 6},
		{Key: "note", Value: "", Line: 8},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_WithoutHeader(t *testing.T) {
	rows, err := tabular.ReadCSV(strings.NewReader("name,John\n"))
	require.NoError(t, err)
	require.Equal(t, []datatree.Row{{Key: "name", Value: "John", Line: 1}}, rows)
}

func TestReadJSON(t *testing.T) {
	input := `{"invoice":{"number":"R-1","total":12.50,"paid":false},"items":[{"sku":"A"},{"sku":"B"}],"note":null}`

	rows, err := tabular.ReadJSON(strings.NewReader(input))
	require.NoError(t, err)

	want := []datatree.Row{
		{Key: "invoice.number", Value: "R-1"},
		{Key: "invoice.paid", Value: false},
		{Key: "invoice.total", Value: "12.50"},
		{Key: "items[0].sku", Value: "A"},
		{Key: "items[1].sku", Value: "B"},
		{Key: "note", Value: nil},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSON_RejectsNonObjectRoot(t *testing.T) {
	_, err := tabular.ReadJSON(strings.NewReader(`[1,2]`))
	require.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	input := "customer:\n  name: Ada\n  vip: true\nitems:\n  - qty: 2\n"

	rows, err := tabular.ReadYAML(strings.NewReader(input))
	require.NoError(t, err)

	want := []datatree.Row{
		{Key: "customer.name", Value: "Ada"},
		{Key: "customer.vip", Value: true},
		{Key: "items[0].qty", Value: "2"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "key", "B1": "value",
		"A2": "customer.name", "B2": "Ada", "C2": "contact",
		"A3": "# skipped",
		"A4": "items[0].sku", "B4": "A1",
	}
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := tabular.ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)

	want := []datatree.Row{
		{Key: "customer.name", Value: "Ada", Comment: "contact", Line: 2},
		{Key: "items[0].sku", Value: "A1", Line: 4},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	paths := []fieldpath.Path{
		fieldpath.MustParse("customer.name"),
		fieldpath.MustParse("items[0].sku"),
	}

	var buf bytes.Buffer
	require.NoError(t, tabular.WriteTemplate(&buf, paths))
	require.Equal(t, "key,value,comment\ncustomer.name,,\nitems[0].sku,,\n", buf.String())

	rows, err := tabular.ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "items[0].sku", rows[1].Key)
}

func TestWriteTemplateXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tabular.WriteTemplateXLSX(&buf, []fieldpath.Path{fieldpath.MustParse("total")}))

	rows, err := tabular.ReadXLSX(&buf, "")
	require.NoError(t, err)
	require.Equal(t, []datatree.Row{{Key: "total", Value: "", Line: 2}}, rows)
}

func TestLoadDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	yamlPath := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,Ada\n"), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: Ada\n"), 0o644))

	fromCSV, err := tabular.Load(csvPath)
	require.NoError(t, err)
	require.Equal(t, "Ada", fromCSV[0].Value)

	fromYAML, err := tabular.Load(yamlPath)
	require.NoError(t, err)
	require.Equal(t, "Ada", fromYAML[0].Value)

	_, err = tabular.Load(filepath.Join(dir, "data.toml"))
	require.Error(t, err)
}
