package datatree_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

func paths(t *testing.T, raw ...string) []fieldpath.Path {
	t.Helper()
	out := make([]fieldpath.Path, 0, len(raw))
	for _, r := range raw {
		out = append(out, fieldpath.MustParse(r))
	}
	return out
}

func TestMerge_NestedRows(t *testing.T) {
	rows := []datatree.Row{
		{Key: "customer.name", Value: "Ada"},
		{Key: "customer.address.city", Value: "Zurich"},
		{Key: "items[0].sku", Value: "A-1"},
		{Key: "items.1.sku", Value: "B-2"},
		{Key: "total", Value: "12.50"},
	}

	tree, err := datatree.Merge(rows, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := map[string]any{
		"customer": map[string]any{
			"name":    "Ada",
			"address": map[string]any{"city": "Zurich"},
		},
		"items": []any{
			map[string]any{"sku": "A-1"},
			map[string]any{"sku": "B-2"},
		},
		"total": "12.50",
	}
	if diff := cmp.Diff(want, tree.Interface()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_SparseIndicesKeepPositions(t *testing.T) {
	rows := []datatree.Row{
		{Key: "items[0]", Value: "first"},
		{Key: "items[2]", Value: "third"},
	}

	tree, err := datatree.Merge(rows, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	items, ok := tree.Field("items")
	if !ok {
		t.Fatalf("items missing")
	}
	if items.Kind() != datatree.KindList || items.Len() != 3 {
		t.Fatalf("expected 3-element list, got %s of %d", items.Kind(), items.Len())
	}
	gap, _ := items.Item(1)
	if !gap.IsNull() {
		t.Fatalf("expected null gap at index 1, got %s", gap.Kind())
	}
}

func TestMerge_NullLiteralAndLastWriteWins(t *testing.T) {
	rows := []datatree.Row{
		{Key: "status", Value: "draft"},
		{Key: "status", Value: "sent"},
		{Key: "notes", Value: "null"},
		{Key: "empty", Value: ""},
	}

	tree, err := datatree.Merge(rows, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	status, _ := tree.Field("status")
	if status.Value() != "sent" {
		t.Fatalf("expected last write to win, got %v", status.Value())
	}
	notes, _ := tree.Field("notes")
	if !notes.IsNull() {
		t.Fatalf("expected null literal to map to null node")
	}
	empty, ok := tree.Field("empty")
	if !ok || empty.Kind() != datatree.KindScalar || !empty.IsEmpty() {
		t.Fatalf("empty string must stay a present, empty scalar")
	}
}

func TestMerge_AmbiguousShape(t *testing.T) {
	cases := map[string][]datatree.Row{
		"index then name": {
			{Key: "items[0]", Value: "a"},
			{Key: "items.label", Value: "b"},
		},
		"name then index": {
			{Key: "items.label", Value: "b"},
			{Key: "items.0", Value: "a"},
		},
		"scalar then nested": {
			{Key: "customer", Value: "Ada"},
			{Key: "customer.name", Value: "Ada"},
		},
		"nested then scalar": {
			{Key: "customer.name", Value: "Ada", Line: 3},
			{Key: "customer", Value: "Ada", Line: 4},
		},
	}

	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := datatree.Merge(rows, nil)
			var dpe *datatree.DataProcessingError
			if !errors.As(err, &dpe) {
				t.Fatalf("expected DataProcessingError, got %v", err)
			}
		})
	}
}

func TestMerge_MalformedKey(t *testing.T) {
	_, err := datatree.Merge([]datatree.Row{{Key: "a..b", Value: "x", Line: 7}}, nil)
	var malformed *fieldpath.MalformedPathError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedPathError, got %v", err)
	}
}

func TestMerge_SeedsFillGapsOnly(t *testing.T) {
	rows := []datatree.Row{
		{Key: "customer.name", Value: "Ada"},
		{Key: "items[1].sku", Value: "B-2"},
	}
	seeds := paths(t, "customer.name", "customer.email", "invoice.number", "items[0].sku", "title")

	tree, err := datatree.Merge(rows, seeds)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := map[string]any{
		"customer": map[string]any{"name": "Ada", "email": ""},
		"items": []any{
			map[string]any{"sku": ""},
			map[string]any{"sku": "B-2"},
		},
		"invoice": map[string]any{"number": ""},
		"title":   "",
	}
	if diff := cmp.Diff(want, tree.Interface()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_SeedConflictsAreIgnored(t *testing.T) {
	rows := []datatree.Row{{Key: "customer", Value: "Ada"}}
	tree, err := datatree.Merge(rows, paths(t, "customer.name"))
	if err != nil {
		t.Fatalf("seeds must not fail the merge: %v", err)
	}
	customer, _ := tree.Field("customer")
	if customer.Value() != "Ada" {
		t.Fatalf("seed overrode data: %v", customer.Interface())
	}
}

func TestMerge_Idempotent(t *testing.T) {
	rows := []datatree.Row{
		{Key: "a.b[2].c", Value: "x"},
		{Key: "a.b[0].c", Value: "y"},
		{Key: "a.d", Value: "null"},
		{Key: "e", Value: "1"},
	}
	seeds := paths(t, "a.b[0].z", "f")

	first, err := datatree.Merge(rows, seeds)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	second, err := datatree.Merge(rows, seeds)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("merge is not idempotent:\n%v\n%v", first.Interface(), second.Interface())
	}
	if diff := cmp.Diff(first.Interface(), second.Interface()); diff != "" {
		t.Fatalf("interface mismatch (-first +second):\n%s", diff)
	}
}

func TestMerge_IndexLimit(t *testing.T) {
	rows := []datatree.Row{
		{Key: "items[0]", Value: "first"},
		{Key: "items[2147483647].sku", Value: "x", Line: 9},
	}

	tree, err := datatree.Merge(rows, nil)
	if tree != nil {
		t.Fatalf("expected no tree on error")
	}
	var dpe *datatree.DataProcessingError
	if !errors.As(err, &dpe) {
		t.Fatalf("expected DataProcessingError, got %v", err)
	}
	if dpe.Path != "items[2147483647]" || dpe.Line != 9 {
		t.Fatalf("unexpected error location: %+v", dpe)
	}

	atLimit := []datatree.Row{{Key: fmt.Sprintf("items[%d]", datatree.MaxIndex), Value: "x"}}
	tree, err = datatree.Merge(atLimit, nil)
	if err != nil {
		t.Fatalf("index at limit must merge: %v", err)
	}
	items, _ := tree.Field("items")
	if items.Len() != datatree.MaxIndex+1 {
		t.Fatalf("expected %d items, got %d", datatree.MaxIndex+1, items.Len())
	}
}

func TestMerge_SeedsKeepExplicitNulls(t *testing.T) {
	rows := []datatree.Row{
		{Key: "notes", Value: "null"},
		{Key: "customer", Value: nil},
		{Key: "items[1]", Value: "second"},
	}
	seeds := paths(t, "notes", "customer.name", "items[0]")

	tree, err := datatree.Merge(rows, seeds)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := map[string]any{
		"notes":    nil,
		"customer": nil,
		"items":    []any{"", "second"},
	}
	if diff := cmp.Diff(want, tree.Interface()); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}
