package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const namespaceUnit = `<?xml version="1.0"?>
<doxygen>
  <compounddef id="namespacens" kind="namespace" language="C++">
    <compoundname>ns</compoundname>
    <sectiondef kind="func">
      <memberdef kind="function" id="namespacens_1foo">
        <type>int</type>
        <name>foo</name>
        <briefdescription><para>Uses <ref refid="missing">gone</ref>.</para></briefdescription>
      </memberdef>
    </sectiondef>
  </compounddef>
</doxygen>`

const fileUnit = `<?xml version="1.0"?>
<doxygen>
  <compounddef id="a_8h" kind="file" language="C++">
    <compoundname>a.h</compoundname>
    <innernamespace refid="namespacens">ns</innernamespace>
  </compounddef>
</doxygen>`

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func createSampleExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "namespacens.xml", namespaceUnit)
	writeTestFile(t, dir, "a_8h.xml", fileUnit)
	writeTestFile(t, dir, "index.xml", `<doxygenindex/>`)
	return dir
}

func TestRunBuildDefault(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)
	out := filepath.Join(t.TempDir(), "html")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{xml, out}, &stdout, &stderr), stderr.String())

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "files.html"))
	assert.FileExists(t, filepath.Join(out, "namespace-ns.html"))
	assert.FileExists(t, filepath.Join(out, "function-foo-ns.html"))
	assert.Empty(t, stdout.String())

	logs := stderr.String()
	assert.Contains(t, logs, "run_id=")
	assert.Contains(t, logs, "level=WARN")
	assert.Contains(t, logs, "kind=dangling-reference")
	assert.Contains(t, logs, "wrote pages")
}

func TestRunBuildStats(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"build", "--stats", xml, t.TempDir()}, &stdout, &stderr), stderr.String())

	var got buildStats
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got), stdout.String())
	assert.Equal(t, 2, got.Units)
	assert.Equal(t, 2, got.UnitsOK)
	assert.Equal(t, 1, got.Unresolved)
	assert.Equal(t, 5, got.Pages)
}

func TestRunSymbols(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"symbols", xml}, &stdout, &stderr), stderr.String())

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "source: "+filepath.Base(xml)+"\n"), out)
	assert.Contains(t, out, "definitions[3]{")
	assert.Contains(t, out, "\n  function-foo-ns,function,foo,")
	assert.Contains(t, out, "diagnostics[1]{")
}

func TestRunSymbolsFiltered(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"symbols", "--kind", "namespace", xml}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "definitions[1]{")
	assert.Contains(t, stdout.String(), "\n  namespace-ns,namespace,ns,")

	stdout.Reset()
	require.NoError(t, run([]string{"symbols", "-n", "1", "--name", "FOO", xml}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "definitions[1]{")
	assert.Contains(t, stdout.String(), "function-foo-ns")
}

func TestRunDepgraph(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)
	dot := filepath.Join(t.TempDir(), "deps.dot")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"depgraph", "-o", dot, xml}, &stdout, &stderr))

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Equal(t, "digraph d {rankdir=LR;\n\n}\n", string(data))
	assert.Empty(t, stdout.String())
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--version"}, &stdout, &stderr))
	assert.Equal(t, "doxyfront "+version+"\n", stdout.String())
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	writeTestFile(t, empty, "readme.txt", "nothing here")
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	writeTestFile(t, filepath.Dir(badConfig), "bad.yaml", "jobs: -1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"one argument", []string{"only"}, "expected <xml-dir> <out-dir>"},
		{"no units", []string{"symbols", empty}, "no XML units found"},
		{"missing dir", []string{"symbols", filepath.Join(empty, "nope")}, "reading XML directory"},
		{"invalid config", []string{"--config", badConfig, "symbols", empty}, "invalid config"},
		{"missing config", []string{"--config", filepath.Join(empty, "none.yaml"), "symbols", empty}, "reading config"},
		{"bad log level", []string{"--log-level", "loud", "symbols", empty}, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)
	cfg := filepath.Join(t.TempDir(), "doxyfront.yaml")
	writeTestFile(t, filepath.Dir(cfg), filepath.Base(cfg), "log_format: json\nexclude: [\"index.xml\", \"a_8h.xml\"]\n")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--config", cfg, "symbols", xml}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `"run_id":`)
	assert.Contains(t, stdout.String(), "definitions[2]{")

	stdout.Reset()
	stderr.Reset()
	require.NoError(t, run([]string{"--config", cfg, "--log-format", "text", "--exclude", "namespacens.xml", "symbols", xml}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "level=INFO")
	assert.NotContains(t, stdout.String(), "function-foo-ns")
}

func TestRunMetricsFile(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)
	prom := filepath.Join(t.TempDir(), "doxyfront.prom")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--metrics-file", prom, xml, t.TempDir()}, &stdout, &stderr))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `doxyfront_units_total{status="ok"} 2`)
	assert.Contains(t, string(data), "doxyfront_pages_written_total 5")
}

func TestRunCacheDir(t *testing.T) {
	t.Parallel()
	xml := createSampleExport(t)
	cache := filepath.Join(t.TempDir(), "cache")

	var first, second, stderr bytes.Buffer
	require.NoError(t, run([]string{"--cache-dir", cache, "symbols", xml}, &first, &stderr))
	assert.Contains(t, stderr.String(), "cached=0")

	stderr.Reset()
	require.NoError(t, run([]string{"--cache-dir", cache, "symbols", xml}, &second, &stderr))
	assert.Contains(t, stderr.String(), "cached=2")
	assert.Equal(t, first.String(), second.String())
}
