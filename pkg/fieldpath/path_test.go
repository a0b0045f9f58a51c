package fieldpath_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

func TestParse_RoundTrip(t *testing.T) {
	cases := map[string]string{
		"name":                  "name",
		"customer.address.city": "customer.address.city",
		"items[0]":              "items[0]",
		"items.0":               "items[0]",
		"items.0.name":          "items[0].name",
		"items[2].price":        "items[2].price",
		"matrix[1][2]":          "matrix[1][2]",
		"matrix.1.2":            "matrix[1][2]",
		"[0].name":              "[0].name",
		"a.b[3].c.4":            "a.b[3].c[4]",
		"items[007]":            "items[7]",
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			path, err := fieldpath.Parse(input)
			if err != nil {
				t.Fatalf("parse %q: %v", input, err)
			}
			if got := path.String(); got != want {
				t.Fatalf("compose mismatch: want %q got %q", want, got)
			}

			normalized, err := fieldpath.Normalize(input)
			if err != nil {
				t.Fatalf("normalize %q: %v", input, err)
			}
			if normalized != want {
				t.Fatalf("normalize mismatch: want %q got %q", want, normalized)
			}

			again, err := fieldpath.Parse(path.String())
			if err != nil {
				t.Fatalf("reparse %q: %v", path.String(), err)
			}
			if !again.Equal(path) {
				t.Fatalf("reparse changed the path: %q vs %q", again, path)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		"",
		".",
		"a..b",
		".a",
		"a.",
		"a[]",
		"a[x]",
		"a[-1]",
		"a[0",
		"a[0]x",
		"a]",
		"a.[0]",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := fieldpath.Parse(input)
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			var malformed *fieldpath.MalformedPathError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedPathError, got %T", err)
			}
			if malformed.Path != input {
				t.Fatalf("error path mismatch: %q", malformed.Path)
			}
		})
	}
}

func TestParse_Segments(t *testing.T) {
	path := fieldpath.MustParse("orders[1].lines.0.sku")

	type seg struct {
		Index bool
		Name  string
		Pos   int
	}
	var got []seg
	for _, s := range path.Segments() {
		got = append(got, seg{Index: s.IsIndex(), Name: s.Name(), Pos: s.Index()})
	}

	want := []seg{
		{Name: "orders", Pos: -1},
		{Index: true, Pos: 1},
		{Name: "lines", Pos: -1},
		{Index: true, Pos: 0},
		{Name: "sku", Pos: -1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if path.Root() != "orders" {
		t.Fatalf("root mismatch: %q", path.Root())
	}
}

func TestAppend_DoesNotAlias(t *testing.T) {
	base := fieldpath.MustParse("a.b")
	// force spare capacity so an aliasing implementation would be caught
	base = base.Append(fieldpath.Name("c")).Parent()

	left := base.AppendName("x")
	right := base.AppendIndex(4)

	if left.String() != "a.b.x" {
		t.Fatalf("left mismatch: %q", left)
	}
	if right.String() != "a.b[4]" {
		t.Fatalf("right mismatch: %q", right)
	}
	if base.String() != "a.b" {
		t.Fatalf("base mutated: %q", base)
	}
}

func TestAppendName_NumericBecomesIndex(t *testing.T) {
	path := fieldpath.Path{}.AppendName("items").AppendName("3")
	if path.String() != "items[3]" {
		t.Fatalf("unexpected path %q", path)
	}
	last, ok := path.Last()
	if !ok || !last.IsIndex() || last.Index() != 3 {
		t.Fatalf("expected index segment, got %#v", last)
	}
}

func TestHasPrefix(t *testing.T) {
	path := fieldpath.MustParse("customer.address.city")
	if !path.HasPrefix(fieldpath.MustParse("customer.address")) {
		t.Fatalf("expected prefix match")
	}
	if path.HasPrefix(fieldpath.MustParse("customer.name")) {
		t.Fatalf("unexpected prefix match")
	}
	if !path.HasPrefix(fieldpath.Path{}) {
		t.Fatalf("root must prefix every path")
	}
	if got := fieldpath.Join(fieldpath.MustParse("a"), fieldpath.MustParse("b[1]")).String(); got != "a.b[1]" {
		t.Fatalf("join mismatch: %q", got)
	}
}
