package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/treeaudit/checker"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string
// selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch fm := Format(strings.ToLower(strings.TrimSpace(name))); fm {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return fm, nil
	default:
		return "", fmt.Errorf("unknown report format %q", name)
	}
}

// Options control rendering.
type Options struct {
	Format Format
	Color  bool
	Sort   bool
}

const (
	headerTpl  = "Scanning directory: {root}\n\n"
	summaryTpl = "\n{files} files ({bytes}) checked: " +
		"{changed} changed, {new} new, {unchanged} unchanged, " +
		"{skipped} skipped\n"
	intactMsg = "All files are intact. No changes detected."
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D26A"))
	changedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF3838"))
	newStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB800"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// document is the machine-readable shape of a Result.
type document struct {
	Root      string     `json:"root" yaml:"root"`
	NoChanges bool       `json:"no_changes" yaml:"no_changes"`
	Changed   []string   `json:"changed" yaml:"changed"`
	New       []string   `json:"new" yaml:"new"`
	Skipped   []skipItem `json:"skipped" yaml:"skipped"`
	Unchanged int        `json:"unchanged" yaml:"unchanged"`
	Files     int        `json:"files" yaml:"files"`
	Bytes     int64      `json:"bytes" yaml:"bytes"`
}

type skipItem struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Render writes res to w in the requested format.
func Render(w io.Writer, res *checker.Result, opts Options) error {
	const errCtx = "rendering report"

	var err error

	switch opts.Format {
	case FormatText, "":
		err = renderText(w, res, opts)
	case FormatJSON:
		err = renderJSON(w, newDocument(res, opts.Sort))
	case FormatYAML:
		err = renderYAML(w, newDocument(res, opts.Sort))
	default:
		err = fmt.Errorf("unknown report format %q", opts.Format)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func newDocument(res *checker.Result, sorted bool) document {
	doc := document{
		Root:      res.Root,
		NoChanges: res.NoChanges(),
		Changed:   ordered(res.Changed, sorted),
		New:       ordered(res.New, sorted),
		Skipped:   make([]skipItem, 0, len(res.Skipped)),
		Unchanged: res.Unchanged,
		Files:     res.Files,
		Bytes:     res.Bytes,
	}

	for _, sk := range orderedSkips(res.Skipped, sorted) {
		doc.Skipped = append(doc.Skipped, skipItem{
			Path:   sk.Path,
			Reason: reasonText(sk.Reason),
		})
	}

	return doc
}

func renderJSON(w io.Writer, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

func renderYAML(w io.Writer, doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func renderText(w io.Writer, res *checker.Result, opts Options) error {
	style := func(st lipgloss.Style, s string) string {
		if !opts.Color {
			return s
		}

		return st.Render(s)
	}

	var sb strings.Builder

	sb.WriteString(fasttemplate.ExecuteStringStd(
		headerTpl, "{", "}",
		map[string]interface{}{
			"root": style(headerStyle, res.Root),
		},
	))

	if res.NoChanges() {
		sb.WriteString(style(okStyle, intactMsg))
		sb.WriteByte('\n')
	}

	writeSection(&sb, style(changedStyle, "Changed files:"),
		ordered(res.Changed, opts.Sort))
	writeSection(&sb, style(newStyle, "New files added:"),
		ordered(res.New, opts.Sort))

	if len(res.Skipped) > 0 {
		lines := make([]string, 0, len(res.Skipped))
		for _, sk := range orderedSkips(res.Skipped, opts.Sort) {
			lines = append(lines, sk.Path+" ("+reasonText(sk.Reason)+")")
		}

		writeSection(&sb, style(skipStyle, "Skipped files:"), lines)
	}

	sb.WriteString(fasttemplate.ExecuteStringStd(
		summaryTpl, "{", "}",
		map[string]interface{}{
			"files":     strconv.Itoa(res.Files),
			"bytes":     humanize.Bytes(uint64(max(res.Bytes, 0))),
			"changed":   strconv.Itoa(len(res.Changed)),
			"new":       strconv.Itoa(len(res.New)),
			"unchanged": strconv.Itoa(res.Unchanged),
			"skipped":   strconv.Itoa(len(res.Skipped)),
		},
	))

	_, err := io.WriteString(w, sb.String())

	return err
}

// writeSection writes a heading followed by " - item" lines,
// separated from earlier sections by a blank line. Empty
// sections are omitted.
func writeSection(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}

	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n\n") {
		sb.WriteByte('\n')
	}

	sb.WriteString(heading)
	sb.WriteByte('\n')

	for _, it := range items {
		sb.WriteString(" - ")
		sb.WriteString(it)
		sb.WriteByte('\n')
	}
}

func ordered(paths []string, sorted bool) []string {
	out := slices.Clone(paths)
	if out == nil {
		out = []string{}
	}

	if sorted {
		slices.Sort(out)
	}

	return out
}

func orderedSkips(skips []checker.Skip, sorted bool) []checker.Skip {
	out := slices.Clone(skips)

	if sorted {
		slices.SortFunc(out, func(a, b checker.Skip) int {
			return strings.Compare(a.Path, b.Path)
		})
	}

	return out
}

func reasonText(err error) string {
	if err == nil {
		return "unknown"
	}

	return err.Error()
}
