package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docfill/pkg/prompt"
)

func TestParse(t *testing.T) {
	opts, exit, err := Parse([]string{"-format", "html, pdf", "-suffix", "draft", "-highlight", "tpl.html", "data.csv"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, "tpl.html", opts.TemplatePath)
	require.Equal(t, "data.csv", opts.DataPath)
	require.Equal(t, []string{"html", "pdf"}, opts.Formats)
	require.Equal(t, "draft", opts.Suffix)
	require.True(t, opts.Highlight)
	require.Equal(t, "warn", opts.LogLevel)
}

func TestParse_FlagsOverridePositional(t *testing.T) {
	opts, _, err := Parse([]string{"-t", "a.html", "-d", "a.yaml", "b.html"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "a.html", opts.TemplatePath)
	require.Equal(t, "a.yaml", opts.DataPath)
}

func TestParse_NoTemplatePrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	opts, exit, err := Parse(nil, out)
	require.NoError(t, err)
	require.True(t, exit)
	require.Nil(t, opts)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	cases := [][]string{
		{"-log-format", "xml", "t.html"},
		{"-log-level", "trace", "t.html"},
		{"-stdout", "-dump-tree", "t.html"},
		{"a", "b", "c"},
		{"-unknown"},
	}
	for _, args := range cases {
		_, _, err := Parse(args, &bytes.Buffer{})
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr), "%v", args)
		require.Equal(t, 2, exitErr.Code)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_DumpTree(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "t.html", `{{.customer.name}} {{.customer.city}}`)
	data := writeFile(t, dir, "d.yaml", "customer:\n  name: Ada\n")

	out := &bytes.Buffer{}
	require.NoError(t, Run(context.Background(), &Options{TemplatePath: tpl, DataPath: data, DumpTree: true}, out, nil))

	var tree map[string]map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &tree))
	require.Equal(t, map[string]any{"name": "Ada", "city": ""}, tree["customer"])
}

func TestRun_Stdout(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "t.html", `Hi {{.name}}`)

	out := &bytes.Buffer{}
	require.NoError(t, Run(context.Background(), &Options{TemplatePath: tpl, Stdout: true, NoLayout: true}, out, nil))
	require.Equal(t, `Hi <span class="missing-value" data-field="name">[[name]]</span>`, out.String())
}

func TestRun_DataTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "t.html", `{{range .items}}{{.sku}}{{end}}{{.total}}`)
	target := filepath.Join(dir, "data.csv")

	require.NoError(t, Run(context.Background(), &Options{TemplatePath: tpl, DataTemplate: target}, &bytes.Buffer{}, nil))
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "key,value,comment\nitems[0].sku,,\ntotal,,\n", string(content))
}

func TestRun_BadConfig(t *testing.T) {
	err := Run(context.Background(), &Options{TemplatePath: "t.html", ConfigPath: filepath.Join(t.TempDir(), "none.yaml")}, &bytes.Buffer{}, nil)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
}

type scriptedDriver struct {
	inputs []string
	picks  []int
	info   []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	val := d.picks[0]
	d.picks = d.picks[1:]
	return val, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func TestRun_Interactive(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "t.html", `{{.name}} {{.city}}`)
	writeFile(t, dir, "d.csv", "name,Ada\n")

	driver := &scriptedDriver{inputs: []string{tpl, ""}}
	out := &bytes.Buffer{}
	err := Run(context.Background(), &Options{Interactive: true, Stdout: true, NoLayout: true}, out, driver)
	require.NoError(t, err)
	require.Contains(t, out.String(), `data-field="name">Ada</span>`)
	require.Contains(t, out.String(), `data-field="city">[[city]]</span>`)
}
