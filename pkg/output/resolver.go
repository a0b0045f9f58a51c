// Package output computes collision-free output filenames for a document
// written in several formats at once. All formats share one base name and
// one revision number.
//
// Resolution probes for existing files and returns; nothing is reserved. Two
// processes resolving the same base concurrently can pick the same revision.
// Callers that need exclusivity must create the files with O_EXCL themselves.
package output

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultRevisionMarker separates the base name from the revision.
	DefaultRevisionMarker = ".rev."
	// DefaultMaxRevision bounds the revision search.
	DefaultMaxRevision = 999
	// HighlightedMarker tags files rendered with placeholder highlighting.
	HighlightedMarker = "HIGHLIGHTED"
)

// Request describes one document to name.
type Request struct {
	// Source is the input identifier; its base name without extension
	// becomes the output base.
	Source string
	// Dir is the output directory. Empty means the source's directory.
	Dir string
	// Formats are the extensions written together, for example "html", "pdf".
	Formats []string
	// Suffix is an optional label inserted before the extension.
	Suffix string
	// Highlighted adds the highlight marker to every name.
	Highlighted bool
}

// FileSet is the resolved set of output paths.
type FileSet struct {
	// Paths maps each format to its absolute path.
	Paths       map[string]string
	Revision    int
	Suffix      string
	Highlighted bool
}

// Path returns the path for format.
func (s FileSet) Path(format string) (string, bool) {
	p, ok := s.Paths[normalizeFormat(format)]
	return p, ok
}

// Formats returns the formats in sorted order.
func (s FileSet) Formats() []string {
	out := make([]string, 0, len(s.Paths))
	for format := range s.Paths {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithProber sets how existence is checked. Defaults to OSProber.
func WithProber(p Prober) Option {
	return func(r *Resolver) {
		if p != nil {
			r.prober = p
		}
	}
}

// WithRevisionMarker overrides DefaultRevisionMarker.
func WithRevisionMarker(marker string) Option {
	return func(r *Resolver) {
		if marker != "" {
			r.marker = marker
		}
	}
}

// WithMaxRevision overrides DefaultMaxRevision.
func WithMaxRevision(max int) Option {
	return func(r *Resolver) {
		if max >= 0 {
			r.max = max
		}
	}
}

// Resolver picks the first revision at which no format of a request exists.
type Resolver struct {
	prober Prober
	marker string
	max    int
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		prober: OSProber{},
		marker: DefaultRevisionMarker,
		max:    DefaultMaxRevision,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the file set for req. Revision 0 (no marker) is used when
// none of the formats exist; otherwise revisions 1..max are probed and the
// first one where every format is absent wins. A revision where only some
// formats exist is occupied.
func (r *Resolver) Resolve(ctx context.Context, req Request) (FileSet, error) {
	base, dir, formats, err := r.prepare(req)
	if err != nil {
		return FileSet{}, err
	}

	for rev := 0; rev <= r.max; rev++ {
		if err := ctx.Err(); err != nil {
			return FileSet{}, err
		}
		paths := make(map[string]string, len(formats))
		for _, format := range formats {
			paths[format] = filepath.Join(dir, r.Name(base, rev, req.Suffix, req.Highlighted, format))
		}
		free, err := r.allAbsent(ctx, formats, paths)
		if err != nil {
			return FileSet{}, err
		}
		if free {
			return FileSet{
				Paths:       paths,
				Revision:    rev,
				Suffix:      strings.TrimSpace(req.Suffix),
				Highlighted: req.Highlighted,
			}, nil
		}
	}
	return FileSet{}, &RevisionLimitError{Base: filepath.Join(dir, base), Max: r.max}
}

// Name composes {base}[{marker}{rev}][.{suffix}][.HIGHLIGHTED].{ext}.
func (r *Resolver) Name(base string, rev int, suffix string, highlighted bool, format string) string {
	var b strings.Builder
	b.WriteString(base)
	if rev > 0 {
		b.WriteString(r.marker)
		b.WriteString(strconv.Itoa(rev))
	}
	if s := strings.TrimSpace(suffix); s != "" {
		b.WriteByte('.')
		b.WriteString(s)
	}
	if highlighted {
		b.WriteByte('.')
		b.WriteString(HighlightedMarker)
	}
	b.WriteByte('.')
	b.WriteString(normalizeFormat(format))
	return b.String()
}

func (r *Resolver) allAbsent(ctx context.Context, formats []string, paths map[string]string) (bool, error) {
	for _, format := range formats {
		exists, err := r.prober.Exists(ctx, paths[format])
		if err != nil {
			return false, fmt.Errorf("output: probe %s: %w", paths[format], err)
		}
		if exists {
			return false, nil
		}
	}
	return true, nil
}

func (r *Resolver) prepare(req Request) (base, dir string, formats []string, err error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return "", "", nil, fmt.Errorf("output: source is required")
	}
	base = filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", "", nil, fmt.Errorf("output: source %q has no base name", req.Source)
	}

	dir = strings.TrimSpace(req.Dir)
	if dir == "" {
		dir = filepath.Dir(source)
	}
	if abs, absErr := filepath.Abs(dir); absErr == nil {
		dir = abs
	}

	if len(req.Formats) == 0 {
		return "", "", nil, fmt.Errorf("output: at least one format is required")
	}
	seen := make(map[string]struct{}, len(req.Formats))
	for _, f := range req.Formats {
		format := normalizeFormat(f)
		if format == "" {
			return "", "", nil, fmt.Errorf("output: empty format")
		}
		if _, dup := seen[format]; dup {
			return "", "", nil, fmt.Errorf("output: duplicate format %q", format)
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}
	if strings.ContainsAny(req.Suffix, `/\`) {
		return "", "", nil, fmt.Errorf("output: suffix %q must not contain path separators", req.Suffix)
	}
	return base, dir, formats, nil
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}
