// Package markup defines the resolved-field value and the span markup every
// rendered placeholder is emitted as.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// State tags whether a field was resolved to a concrete value.
type State uint8

const (
	// StateMissing marks absent, null or empty fields.
	StateMissing State = iota
	// StateImported marks fields backed by a dataset value.
	StateImported
)

func (s State) String() string {
	if s == StateImported {
		return "imported"
	}
	return "missing"
}

// ResolvedField is produced once per leaf visited during a render.
type ResolvedField struct {
	Path  fieldpath.Path
	State State
	Raw   any
}

// Imported builds an imported field.
func Imported(path fieldpath.Path, raw any) ResolvedField {
	return ResolvedField{Path: path, State: StateImported, Raw: raw}
}

// Missing builds a missing field.
func Missing(path fieldpath.Path) ResolvedField {
	return ResolvedField{Path: path, State: StateMissing}
}

// HTML is markup that must be written without further escaping.
type HTML string

const (
	DefaultImportedClass = "imported-value"
	DefaultMissingClass  = "missing-value"
	DefaultFallback      = "[[%s]]"
)

// Directives carry the presentation knobs supplied by the caller.
type Directives struct {
	// ImportedClass is the span class for imported values.
	ImportedClass string `json:"importedClass" yaml:"importedClass"`
	// MissingClass is the span class for missing values.
	MissingClass string `json:"missingClass" yaml:"missingClass"`
	// Fallback is a fmt pattern receiving the field path, rendered as the
	// body of missing spans.
	Fallback string `json:"fallback" yaml:"fallback"`
}

// DefaultDirectives returns the stock class names and fallback pattern.
func DefaultDirectives() Directives {
	return Directives{
		ImportedClass: DefaultImportedClass,
		MissingClass:  DefaultMissingClass,
		Fallback:      DefaultFallback,
	}
}

// WithDefaults fills blank directives from DefaultDirectives.
func (d Directives) WithDefaults() Directives {
	def := DefaultDirectives()
	if strings.TrimSpace(d.ImportedClass) == "" {
		d.ImportedClass = def.ImportedClass
	}
	if strings.TrimSpace(d.MissingClass) == "" {
		d.MissingClass = def.MissingClass
	}
	if strings.TrimSpace(d.Fallback) == "" {
		d.Fallback = def.Fallback
	}
	return d
}

// FallbackText returns the bracketed text shown for a missing path.
func (d Directives) FallbackText(path fieldpath.Path) string {
	pattern := d.Fallback
	if pattern == "" {
		pattern = DefaultFallback
	}
	if !strings.Contains(pattern, "%s") {
		return pattern
	}
	return fmt.Sprintf(pattern, path.String())
}

// Render emits the span for field.
func (d Directives) Render(field ResolvedField) HTML {
	d = d.WithDefaults()
	path := html.EscapeString(field.Path.String())

	var b strings.Builder
	b.WriteString(`<span class="`)
	if field.State == StateImported {
		b.WriteString(html.EscapeString(d.ImportedClass))
		b.WriteString(`" data-field="`)
		b.WriteString(path)
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(Text(field.Raw)))
	} else {
		b.WriteString(html.EscapeString(d.MissingClass))
		b.WriteString(`" data-field="`)
		b.WriteString(path)
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(d.FallbackText(field.Path)))
	}
	b.WriteString(`</span>`)
	return HTML(b.String())
}

var spanPattern = regexp.MustCompile(`(?s)^\s*<span class="([^"]*)" data-field="([^"]*)">(.*)</span>\s*$`)

// Unwrap extracts the value from markup produced by Render. ok is false when
// s is not a placeholder span. Missing spans unwrap to "".
func (d Directives) Unwrap(s string) (value string, state State, ok bool) {
	d = d.WithDefaults()
	m := spanPattern.FindStringSubmatch(s)
	if m == nil {
		return s, StateMissing, false
	}
	class := html.UnescapeString(m[1])
	switch class {
	case d.ImportedClass:
		return html.UnescapeString(m[3]), StateImported, true
	case d.MissingClass:
		return "", StateMissing, true
	default:
		return s, StateMissing, false
	}
}

// Text stringifies a raw scalar value.
func Text(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case HTML:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
