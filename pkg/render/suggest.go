package render

import (
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/goliatone/go-docfill/pkg/datatree"
	"github.com/goliatone/go-docfill/pkg/fieldpath"
)

// suggest finds the closest existing key for an unresolved path by walking
// the data to the deepest node that exists and ranking its keys against the
// segment that could not be found.
func suggest(data *datatree.Node, path fieldpath.Path) (fieldpath.Path, bool) {
	cur := data
	for i, seg := range path.Segments() {
		key := seg.Name()
		if seg.IsIndex() {
			key = strconv.Itoa(seg.Index())
		}
		if next, ok := cur.Child(key); ok {
			cur = next
			continue
		}
		if seg.IsIndex() || cur.Kind() != datatree.KindMap {
			return fieldpath.Path{}, false
		}
		ranks := fuzzy.RankFindFold(seg.Name(), cur.Keys())
		if len(ranks) == 0 {
			return fieldpath.Path{}, false
		}
		sort.Sort(ranks)
		parent := fieldpath.New(path.Segments()[:i]...)
		return parent.AppendName(ranks[0].Target), true
	}
	return fieldpath.Path{}, false
}
