package format_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/markup"
)

func newFormatter(t *testing.T) (*format.Formatter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return format.New(format.DefaultLocale(), format.WithLogger(logger)), &buf
}

func TestDate_EmptyInputsAreMissing(t *testing.T) {
	f, _ := newFormatter(t)
	path := fieldpath.MustParse("date")

	fromNil := f.Date(nil, path)
	fromEmpty := f.Date("", path)

	require.Equal(t, markup.StateMissing, fromNil.State)
	require.Equal(t, markup.StateMissing, fromEmpty.State)
	require.Equal(t, "date", fromNil.Path.String())

	d := markup.DefaultDirectives()
	require.Equal(t, d.Render(fromNil), d.Render(fromEmpty))
	require.Equal(t, markup.HTML(`<span class="missing-value" data-field="date">[[date]]</span>`), d.Render(fromNil))
}

func TestDate_Inputs(t *testing.T) {
	f, _ := newFormatter(t)
	path := fieldpath.MustParse("invoice.date")

	cases := map[string]any{
		"iso":          "2024-03-05",
		"rfc3339":      "2024-03-05T10:30:00Z",
		"german":       "05.03.2024",
		"short german": "5.3.2024",
		"time":         time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC),
		"wrapped":      `<span class="imported-value" data-field="invoice.date">2024-03-05</span>`,
		"field":        markup.Imported(path, "2024-03-05"),
	}
	for name, raw := range cases {
		got := f.Date(raw, path)
		require.Equal(t, markup.StateImported, got.State, name)
		require.Equal(t, "05.03.2024", got.Raw, name)
		require.Equal(t, "invoice.date", got.Path.String(), name)
	}

	epoch := f.Date(int64(0), path)
	require.Equal(t, "01.01.1970", epoch.Raw)
}

func TestDate_FailureIsLoggedAndMissing(t *testing.T) {
	f, logs := newFormatter(t)
	path := fieldpath.MustParse("due")

	got := f.Date("next tuesday", path)
	require.Equal(t, markup.StateMissing, got.State)
	require.Equal(t, "due", got.Path.String())
	require.Contains(t, logs.String(), "cannot format value")
	require.Contains(t, logs.String(), "next tuesday")
}

func TestDate_MissingPlaceholderInput(t *testing.T) {
	f, _ := newFormatter(t)
	path := fieldpath.MustParse("date")
	got := f.Date(`<span class="missing-value" data-field="date">[[date]]</span>`, path)
	require.Equal(t, markup.StateMissing, got.State)
}

func TestNumber(t *testing.T) {
	f, _ := newFormatter(t)
	path := fieldpath.MustParse("total")

	for _, raw := range []any{1234.5, "1234.5", "1.234,50", "1234,5", float32(1234.5)} {
		got := f.Number(raw, path)
		require.Equal(t, markup.StateImported, got.State, "%v", raw)
		require.Equal(t, "1.234,50", got.Raw, "%v", raw)
	}

	require.Equal(t, "7,00", f.Number(7, path).Raw)
	require.Equal(t, markup.StateMissing, f.Number("abc", path).State)
	require.Equal(t, markup.StateMissing, f.Number(struct{}{}, path).State)
}

func TestCurrency(t *testing.T) {
	f, _ := newFormatter(t)
	path := fieldpath.MustParse("amount")

	for _, raw := range []any{1234.5, "1.234,50 €", "1234.50 EUR"} {
		got := f.Currency(raw, path)
		require.Equal(t, markup.StateImported, got.State, "%v", raw)
		require.Equal(t, "1.234,50 €", got.Raw, "%v", raw)
	}
	require.Equal(t, markup.StateMissing, f.Currency("", path).State)
}

func TestCurrency_ISOCodeWithoutSymbol(t *testing.T) {
	loc, err := format.LocaleConfig{Currency: "USD"}.Locale()
	require.NoError(t, err)

	got := format.New(loc).Currency(99, fieldpath.MustParse("amount"))
	require.Equal(t, "99,00 USD", got.Raw)
}

func TestLocaleConfig_Validation(t *testing.T) {
	_, err := format.LocaleConfig{Tag: "not a tag!"}.Locale()
	require.Error(t, err)

	_, err = format.LocaleConfig{DecimalSeparator: "."}.Locale()
	require.Error(t, err)

	_, err = format.LocaleConfig{Currency: "EURO"}.Locale()
	require.Error(t, err)

	digits := 0
	loc, err := format.LocaleConfig{FractionDigits: &digits, DateLayout: "2006/01/02"}.Locale()
	require.NoError(t, err)
	require.Equal(t, 0, loc.FractionDigits)
	require.Equal(t, "2006/01/02", loc.DateLayout)
}
