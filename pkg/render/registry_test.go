package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docfill/pkg/format"
	"github.com/goliatone/go-docfill/pkg/render"
)

func noop(render.Call) (any, error) { return nil, nil }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := render.NewRegistry()
	require.NoError(t, reg.Register("b", noop))
	require.NoError(t, reg.Register("a", noop))

	require.Error(t, reg.Register("a", noop), "duplicates are rejected")
	require.Error(t, reg.Register(" ", noop))
	require.Error(t, reg.Register("c", nil))

	require.True(t, reg.Has("a"))
	require.Equal(t, []string{"a", "b"}, reg.Names())
	require.NoError(t, reg.Replace("a", noop))
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister("a", noop)

	clone := reg.Clone()
	clone.MustRegister("b", noop)

	require.False(t, reg.Has("b"))
	require.True(t, clone.Has("a"))
}

func TestDefaultRegistry_Helpers(t *testing.T) {
	reg := render.DefaultRegistry(format.Default())
	for _, name := range []string{
		"eq", "ne", "lt", "le", "gt", "ge", "and", "or", "not", "len", "index",
		"first", "last", "loopIndex", "formatDate", "formatNumber", "formatCurrency",
	} {
		require.True(t, reg.Has(name), name)
	}
}

func TestRenderers_DoNotShareRegistries(t *testing.T) {
	a := render.New(render.WithHelper("only", noop))
	b := render.New()

	require.True(t, a.Registry().Has("only"))
	require.False(t, b.Registry().Has("only"))
}
