package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/treeaudit/checker"
	"github.com/byte4ever/treeaudit/report"
)

func sampleResult() *checker.Result {
	return &checker.Result{
		Root:      "/data",
		Changed:   []string{"z.txt", "a.txt"},
		New:       []string{"b/c.txt"},
		Skipped:   []checker.Skip{{Path: "gone.txt", Reason: errors.New("file unavailable")}},
		Unchanged: 3,
		Files:     6,
		Bytes:     2048,
	}
}

func render(tb testing.TB, res *checker.Result, opts report.Options) string {
	tb.Helper()

	var buf bytes.Buffer
	require.NoError(tb, report.Render(&buf, res, opts))

	return buf.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]report.Format{
		"":       report.FormatText,
		"text":   report.FormatText,
		" JSON ": report.FormatJSON,
		"yaml":   report.FormatYAML,
	} {
		got, err := report.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := report.ParseFormat("xml")
	require.Error(t, err)
}

func TestRender_text_no_changes(t *testing.T) {
	t.Parallel()

	got := render(t, &checker.Result{Root: "/data", Unchanged: 2, Files: 2, Bytes: 10},
		report.Options{Format: report.FormatText})

	assert.Equal(
		t,
		"Scanning directory: /data\n\n"+
			"All files are intact. No changes detected.\n"+
			"\n2 files (10 B) checked: 0 changed, 0 new, 2 unchanged, 0 skipped\n",
		got,
	)
}

func TestRender_text_with_changes_discovery_order(t *testing.T) {
	t.Parallel()

	got := render(t, sampleResult(), report.Options{Format: report.FormatText})

	assert.Equal(
		t,
		"Scanning directory: /data\n\n"+
			"Changed files:\n - z.txt\n - a.txt\n\n"+
			"New files added:\n - b/c.txt\n\n"+
			"Skipped files:\n - gone.txt (file unavailable)\n\n"+
			"6 files (2.0 kB) checked: 2 changed, 1 new, 3 unchanged, 1 skipped\n",
		got,
	)
}

func TestRender_text_sorted_leaves_result_untouched(t *testing.T) {
	t.Parallel()

	res := sampleResult()

	got := render(t, res, report.Options{Format: report.FormatText, Sort: true})

	assert.Less(t, strings.Index(got, " - a.txt"), strings.Index(got, " - z.txt"))
	assert.Equal(t, []string{"z.txt", "a.txt"}, res.Changed)
}

func TestRender_text_color_keeps_content(t *testing.T) {
	t.Parallel()

	got := render(t, sampleResult(), report.Options{
		Format: report.FormatText,
		Color:  true,
	})

	assert.Contains(t, got, "Changed files:")
	assert.Contains(t, got, " - b/c.txt")
}

type decoded struct {
	Root      string   `json:"root" yaml:"root"`
	NoChanges bool     `json:"no_changes" yaml:"no_changes"`
	Changed   []string `json:"changed" yaml:"changed"`
	New       []string `json:"new" yaml:"new"`
	Skipped   []struct {
		Path   string `json:"path" yaml:"path"`
		Reason string `json:"reason" yaml:"reason"`
	} `json:"skipped" yaml:"skipped"`
	Unchanged int   `json:"unchanged" yaml:"unchanged"`
	Files     int   `json:"files" yaml:"files"`
	Bytes     int64 `json:"bytes" yaml:"bytes"`
}

func TestRender_json(t *testing.T) {
	t.Parallel()

	got := render(t, sampleResult(), report.Options{
		Format: report.FormatJSON,
		Sort:   true,
	})

	var doc decoded
	require.NoError(t, json.Unmarshal([]byte(got), &doc))

	assert.Equal(t, "/data", doc.Root)
	assert.False(t, doc.NoChanges)
	assert.Equal(t, []string{"a.txt", "z.txt"}, doc.Changed)
	assert.Equal(t, []string{"b/c.txt"}, doc.New)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, "gone.txt", doc.Skipped[0].Path)
	assert.Equal(t, 3, doc.Unchanged)
	assert.Equal(t, int64(2048), doc.Bytes)
}

func TestRender_json_empty_lists_not_null(t *testing.T) {
	t.Parallel()

	got := render(t, &checker.Result{Root: "/r"}, report.Options{
		Format: report.FormatJSON,
	})

	assert.Contains(t, got, `"changed": []`)
	assert.Contains(t, got, `"new": []`)
	assert.Contains(t, got, `"no_changes": true`)
}

func TestRender_yaml(t *testing.T) {
	t.Parallel()

	got := render(t, sampleResult(), report.Options{Format: report.FormatYAML})

	var doc decoded
	require.NoError(t, yaml.Unmarshal([]byte(got), &doc))

	assert.Equal(t, []string{"z.txt", "a.txt"}, doc.Changed)
	assert.Equal(t, 6, doc.Files)
}

func TestRender_unknown_format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := report.Render(&buf, sampleResult(), report.Options{Format: "xml"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering report")
}
