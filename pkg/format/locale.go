package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Locale is the single locale configuration every formatter applies.
type Locale struct {
	// Tag selects number formatting conventions.
	Tag language.Tag
	// DateLayout is the Go time layout used for output.
	DateLayout string
	// InputDateLayouts are tried in order when parsing date strings.
	InputDateLayouts []string
	// DecimalSeparator and GroupSeparator describe locale-formatted number
	// input such as "1.234,50".
	DecimalSeparator string
	GroupSeparator   string
	// FractionDigits is the number of decimals for numbers and amounts.
	FractionDigits int
	// Currency is the ISO 4217 unit appended to amounts.
	Currency currency.Unit
	// CurrencySymbol overrides the ISO code in output when set (for example "€").
	CurrencySymbol string
}

// DefaultLocale returns the canonical de-DE configuration.
func DefaultLocale() Locale {
	return Locale{
		Tag:        language.German,
		DateLayout: "02.01.2006",
		InputDateLayouts: []string{
			"2006-01-02",
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"02.01.2006",
			"2.1.2006",
			"01-02-06",
		},
		DecimalSeparator: ",",
		GroupSeparator:   ".",
		FractionDigits:   2,
		Currency:         currency.EUR,
		CurrencySymbol:   "€",
	}
}

// LocaleConfig is the serialisable form of Locale.
type LocaleConfig struct {
	Tag              string   `json:"tag" yaml:"tag"`
	DateLayout       string   `json:"dateLayout" yaml:"dateLayout"`
	InputDateLayouts []string `json:"inputDateLayouts" yaml:"inputDateLayouts"`
	DecimalSeparator string   `json:"decimalSeparator" yaml:"decimalSeparator"`
	GroupSeparator   string   `json:"groupSeparator" yaml:"groupSeparator"`
	FractionDigits   *int     `json:"fractionDigits" yaml:"fractionDigits"`
	Currency         string   `json:"currency" yaml:"currency"`
	CurrencySymbol   *string  `json:"currencySymbol" yaml:"currencySymbol"`
}

// Locale converts cfg into a Locale, starting from DefaultLocale for blank
// settings.
func (cfg LocaleConfig) Locale() (Locale, error) {
	loc := DefaultLocale()

	if tag := strings.TrimSpace(cfg.Tag); tag != "" {
		parsed, err := language.Parse(tag)
		if err != nil {
			return Locale{}, fmt.Errorf("format: locale tag %q: %w", tag, err)
		}
		loc.Tag = parsed
	}
	if layout := strings.TrimSpace(cfg.DateLayout); layout != "" {
		loc.DateLayout = layout
	}
	if len(cfg.InputDateLayouts) > 0 {
		loc.InputDateLayouts = append([]string(nil), cfg.InputDateLayouts...)
	}
	if cfg.DecimalSeparator != "" {
		loc.DecimalSeparator = cfg.DecimalSeparator
	}
	if cfg.GroupSeparator != "" {
		loc.GroupSeparator = cfg.GroupSeparator
	}
	if loc.DecimalSeparator == loc.GroupSeparator {
		return Locale{}, fmt.Errorf("format: decimal and group separators must differ (%q)", loc.DecimalSeparator)
	}
	if cfg.FractionDigits != nil {
		if *cfg.FractionDigits < 0 {
			return Locale{}, fmt.Errorf("format: fraction digits must not be negative")
		}
		loc.FractionDigits = *cfg.FractionDigits
	}
	if code := strings.TrimSpace(cfg.Currency); code != "" {
		unit, err := currency.ParseISO(code)
		if err != nil {
			return Locale{}, fmt.Errorf("format: currency %q: %w", code, err)
		}
		loc.Currency = unit
		loc.CurrencySymbol = ""
	}
	if cfg.CurrencySymbol != nil {
		loc.CurrencySymbol = *cfg.CurrencySymbol
	}
	return loc, nil
}
