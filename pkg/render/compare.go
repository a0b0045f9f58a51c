package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/markup"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Equal compares two resolved values. Placeholder wrappers are removed
// first. Nulls equal only each other, "true"/"false" compare as booleans,
// numeric strings compare as numbers and everything else compares as text
// ignoring case.
func Equal(a, b any) bool {
	a, b = plain(a), plain(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := asBool(a); ok {
		if bb, ok := asBool(b); ok {
			return ab == bb
		}
	}
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			return an == bn
		}
	}
	return strings.EqualFold(markup.Text(a), markup.Text(b))
}

// Compare orders two resolved values: numerically when both are numeric,
// otherwise as case-folded text. Null sorts as the empty string.
func Compare(a, b any) int {
	a, b = plain(a), plain(b)
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(markup.Text(a)), strings.ToLower(markup.Text(b)))
}

// Truthy reports whether a resolved value selects the main branch of a
// conditional. Null, "", "false", false, zero numbers and empty containers
// are false. The string "0" is true.
func Truthy(raw any) bool {
	if v, ok := raw.(Value); ok {
		if v.Field {
			if !v.found {
				return false
			}
			if v.node.Kind() == datatree.KindScalar {
				return Truthy(v.node.Value())
			}
			return !v.node.IsEmpty()
		}
		if v.node != nil {
			return !v.node.IsEmpty()
		}
		raw = v.raw
	}

	switch r := plain(raw).(type) {
	case nil:
		return false
	case bool:
		return r
	case string:
		s := strings.TrimSpace(r)
		return s != "" && !strings.EqualFold(s, "false")
	case []any:
		return len(r) > 0
	case map[string]any:
		return len(r) > 0
	default:
		if n, ok := asNumber(r); ok {
			return n != 0
		}
		return true
	}
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func asNumber(v any) (float64, bool) {
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
	case string:
		s := strings.TrimSpace(n)
		if !numericPattern.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
