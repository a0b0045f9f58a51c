package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/markup"
)

// Option customises a Renderer.
type Option func(*options)

type options struct {
	registry   *Registry
	formatter  *format.Formatter
	helpers    map[string]Helper
	directives markup.Directives
	sanitize   bool
	maxDepth   int
}

// WithRegistry renders with a copy of reg instead of the default helpers.
func WithRegistry(reg *Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithFormatter registers f as the formatDate/formatNumber/formatCurrency
// helpers.
func WithFormatter(f *format.Formatter) Option {
	return func(o *options) {
		o.formatter = f
	}
}

// WithHelper adds or overrides a single helper.
func WithHelper(name string, helper Helper) Option {
	return func(o *options) {
		if o.helpers == nil {
			o.helpers = make(map[string]Helper)
		}
		o.helpers[name] = helper
	}
}

// WithDirectives sets the placeholder classes and fallback text.
func WithDirectives(d markup.Directives) Option {
	return func(o *options) {
		o.directives = d
	}
}

// WithSanitize passes rendered output through Sanitize. Off by default.
func WithSanitize(enabled bool) Option {
	return func(o *options) {
		o.sanitize = enabled
	}
}

// WithMaxDepth bounds nested {{template}} calls.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

func (o options) buildRegistry() (*Registry, error) {
	var reg *Registry
	var errs []error
	if o.registry == nil {
		f := o.formatter
		if f == nil {
			f = format.New(format.DefaultLocale(), format.WithDirectives(o.directives))
		}
		reg = DefaultRegistry(f)
	} else {
		reg = o.registry.Clone()
		if o.formatter != nil {
			if err := RegisterFormatters(reg, o.formatter); err != nil {
				errs = append(errs, err)
			}
		}
	}
	names := make([]string, 0, len(o.helpers))
	for name := range o.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Replace(name, o.helpers[name]); err != nil {
			errs = append(errs, fmt.Errorf("%w (helper %q)", err, name))
		}
	}
	return reg, errors.Join(errs...)
}
