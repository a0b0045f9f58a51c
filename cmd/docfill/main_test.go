package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_WritesDocument(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "note.html")
	data := filepath.Join(dir, "note.csv")
	require.NoError(t, os.WriteFile(tpl, []byte(`<p>{{.name}}</p>`), 0o644))
	require.NoError(t, os.WriteFile(data, []byte("name,Ada\n"), 0o644))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-out", filepath.Join(dir, "out"), tpl, data})
	require.NoError(t, err)

	written := strings.TrimSpace(out.String())
	require.Equal(t, filepath.Join(dir, "out", "note.html"), written)
	content, err := os.ReadFile(written)
	require.NoError(t, err)
	require.Contains(t, string(content), `data-field="name">Ada</span>`)
}
