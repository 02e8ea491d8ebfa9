package checker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/byte4ever/treeaudit/baseline"
	"github.com/byte4ever/treeaudit/digester"
)

// Store loads and saves the baseline mapping.
type Store interface {
	Load() (baseline.Mapping, error)
	Save(m baseline.Mapping) error
}

// Walker enumerates the regular files under root, calling
// fn once per file.
type Walker interface {
	Walk(ctx context.Context, root string, fn func(path string) error) error
}

// FingerprintFunc fingerprints the file at path.
type FingerprintFunc func(path string) (digester.Outcome, error)

// Checker compares a directory tree against its baseline.
type Checker struct {
	Store       Store
	Walker      Walker
	Fingerprint FingerprintFunc
}

// New returns a Checker that fingerprints with
// digester.Calculate.
func New(store Store, walker Walker) *Checker {
	return &Checker{
		Store:       store,
		Walker:      walker,
		Fingerprint: digester.Calculate,
	}
}

// Skip records a file that was enumerated but could not be
// read.
type Skip struct {
	Path   string
	Reason error
}

// Result is the outcome of one check. Changed and New are in
// discovery order.
type Result struct {
	Root      string
	Changed   []string
	New       []string
	Skipped   []Skip
	Unchanged int
	Files     int
	Bytes     int64
	Current   baseline.Mapping
}

// NoChanges reports whether the check found neither changed
// nor new files.
func (r *Result) NoChanges() bool {
	return len(r.Changed) == 0 && len(r.New) == 0
}

// Check runs a full check of root. A baseline load failure
// aborts before the walk; a walk or read failure aborts
// before the save. Otherwise the mapping built during the
// walk replaces the baseline, even when it is empty.
func (ch *Checker) Check(
	ctx context.Context,
	root string,
) (*Result, error) {
	const errCtx = "checking integrity"

	known, err := ch.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"scanning directory",
		"root", root,
		"baseline_entries", len(known),
	)

	fingerprint := ch.Fingerprint
	if fingerprint == nil {
		fingerprint = digester.Calculate
	}

	res := &Result{
		Root:    root,
		Current: make(baseline.Mapping),
	}

	err = ch.Walker.Walk(ctx, root, func(path string) error {
		return res.visit(root, path, known, fingerprint)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := ch.Store.Save(res.Current); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"scan complete",
		"root", root,
		"files", res.Files,
		"changed", len(res.Changed),
		"new", len(res.New),
		"unchanged", res.Unchanged,
		"skipped", len(res.Skipped),
	)

	return res, nil
}

// visit fingerprints one walked file and classifies it
// against known.
func (r *Result) visit(
	root string,
	path string,
	known baseline.Mapping,
	fingerprint FingerprintFunc,
) error {
	rel, err := relativePath(root, path)
	if err != nil {
		return err
	}

	out, err := fingerprint(path)
	if err != nil {
		return err
	}

	if !out.OK() {
		slog.Warn(
			"skipping file",
			"path", rel,
			"error", out.Unavailable,
		)

		r.Skipped = append(r.Skipped, Skip{
			Path:   rel,
			Reason: out.Unavailable,
		})

		return nil
	}

	r.Current[rel] = out.Fingerprint
	r.Files++
	r.Bytes += out.Size

	prev, seen := known[rel]

	switch {
	case !seen:
		slog.Debug("new file", "path", rel)

		r.New = append(r.New, rel)

	case prev != out.Fingerprint:
		slog.Debug(
			"changed file",
			"path", rel,
			"was", prev,
			"now", out.Fingerprint,
		)

		r.Changed = append(r.Changed, rel)

	default:
		r.Unchanged++
	}

	return nil
}

// relativePath returns path relative to root in slash form,
// the key format of a baseline mapping.
func relativePath(root, path string) (string, error) {
	const errCtx = "relativizing path"

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return filepath.ToSlash(rel), nil
}
