// Package format provides the locale-aware date, number and currency
// formatters exposed to templates. Formatters never fail: input they cannot
// interpret becomes a Missing field and a log entry.
package format

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// Option customises a Formatter.
type Option func(*Formatter)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		f.logger = logger
	}
}

// WithDirectives sets the directives used to unwrap placeholder markup passed
// in as input.
func WithDirectives(d markup.Directives) Option {
	return func(f *Formatter) {
		f.directives = d.WithDefaults()
	}
}

// Formatter formats raw values under one Locale. It is safe for concurrent
// use.
type Formatter struct {
	locale     Locale
	printer    *message.Printer
	directives markup.Directives
	logger     *slog.Logger
}

// New constructs a Formatter for loc.
func New(loc Locale, opts ...Option) *Formatter {
	f := &Formatter{
		locale:     loc,
		printer:    message.NewPrinter(loc.Tag),
		directives: markup.DefaultDirectives(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Default returns a Formatter for DefaultLocale.
func Default() *Formatter { return New(DefaultLocale()) }

// Locale returns the formatter's configuration.
func (f *Formatter) Locale() Locale { return f.locale }

// Date renders raw using the locale date layout. Accepted inputs are
// time.Time, Unix seconds and strings in any of the input layouts.
func (f *Formatter) Date(raw any, path fieldpath.Path) markup.ResolvedField {
	value, ok := f.input("date", raw, path)
	if !ok {
		return markup.Missing(path)
	}
	t, err := f.parseDate(value)
	if err != nil {
		return f.fail("date", raw, path, err)
	}
	return markup.Imported(path, t.Format(f.locale.DateLayout))
}

// Number renders raw with the locale separators and fraction digits.
func (f *Formatter) Number(raw any, path fieldpath.Path) markup.ResolvedField {
	value, ok := f.input("number", raw, path)
	if !ok {
		return markup.Missing(path)
	}
	n, err := f.parseNumber(value)
	if err != nil {
		return f.fail("number", raw, path, err)
	}
	return markup.Imported(path, f.decimal(n, f.locale.FractionDigits))
}

// Currency renders raw as an amount in the locale currency, using the
// currency's standard scale.
func (f *Formatter) Currency(raw any, path fieldpath.Path) markup.ResolvedField {
	value, ok := f.input("currency", raw, path)
	if !ok {
		return markup.Missing(path)
	}
	if s, isString := value.(string); isString {
		value = f.stripCurrency(s)
	}
	n, err := f.parseNumber(value)
	if err != nil {
		return f.fail("currency", raw, path, err)
	}
	scale, _ := currency.Standard.Rounding(f.locale.Currency)
	amount := f.decimal(n, scale)
	if sym := f.locale.CurrencySymbol; sym != "" {
		return markup.Imported(path, amount+" "+sym)
	}
	return markup.Imported(path, amount+" "+f.locale.Currency.String())
}

func (f *Formatter) decimal(v float64, digits int) string {
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

// input unwraps raw into a plain value. ok is false when there is nothing to
// format.
func (f *Formatter) input(kind string, raw any, path fieldpath.Path) (any, bool) {
	switch v := raw.(type) {
	case nil:
		f.empty(kind, path)
		return nil, false
	case markup.ResolvedField:
		if v.State != markup.StateImported {
			f.empty(kind, path)
			return nil, false
		}
		return f.input(kind, v.Raw, path)
	case *markup.ResolvedField:
		if v == nil {
			f.empty(kind, path)
			return nil, false
		}
		return f.input(kind, *v, path)
	case markup.HTML:
		return f.input(kind, string(v), path)
	case *time.Time:
		if v == nil {
			f.empty(kind, path)
			return nil, false
		}
		return *v, true
	case string:
		s := v
		if unwrapped, state, isSpan := f.directives.Unwrap(s); isSpan {
			if state != markup.StateImported {
				f.empty(kind, path)
				return nil, false
			}
			s = unwrapped
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			f.empty(kind, path)
			return nil, false
		}
		return s, true
	default:
		return v, true
	}
}

func (f *Formatter) empty(kind string, path fieldpath.Path) {
	f.log().Debug("format: empty input", "helper", kind, "field", path.String())
}

func (f *Formatter) fail(kind string, raw any, path fieldpath.Path, err error) markup.ResolvedField {
	ferr := &FormattingError{Helper: kind, Path: path, Input: raw, Err: err}
	f.log().Warn("format: cannot format value", "helper", kind, "field", path.String(), "error", ferr)
	return markup.Missing(path)
}

func (f *Formatter) log() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return slog.Default()
}

func (f *Formatter) parseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, errors.New("zero time")
		}
		return v, nil
	case string:
		for _, layout := range f.locale.InputDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("no input layout matches %q", v)
	}
	if n, ok := toFloat(value); ok {
		sec, frac := math.Modf(n)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported date input %T", value)
}

func (f *Formatter) parseNumber(value any) (float64, error) {
	if n, ok := toFloat(value); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number")
		}
		return n, nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unsupported number input %T", value)
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n, nil
	}
	localized := s
	if group := f.locale.GroupSeparator; group != "" {
		localized = strings.ReplaceAll(localized, group, "")
	}
	if dec := f.locale.DecimalSeparator; dec != "" && dec != "." {
		localized = strings.Replace(localized, dec, ".", 1)
	}
	n, err := strconv.ParseFloat(localized, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}

func (f *Formatter) stripCurrency(s string) string {
	for _, token := range []string{f.locale.CurrencySymbol, f.locale.Currency.String()} {
		if token != "" {
			s = strings.ReplaceAll(s, token, "")
		}
	}
	return strings.TrimSpace(s)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
