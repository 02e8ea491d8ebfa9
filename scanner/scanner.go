package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

// Tree walks a directory tree and hands every eligible
// regular file to a callback. The zero value yields every
// regular file.
type Tree struct {
	// ExcludeFiles are matched against the base name of
	// each regular file.
	ExcludeFiles []*regexp.Regexp

	// ExcludeDirs are matched against the slash-separated
	// path of each directory relative to the root. A match
	// prunes the whole subtree.
	ExcludeDirs []*regexp.Regexp

	// SkipPaths are absolute paths, with directory
	// symlinks resolved, that are never yielded.
	SkipPaths map[string]struct{}
}

// NewTree compiles the exclusion patterns and resolves
// skip paths to absolute form.
func NewTree(
	excludeFiles []string,
	excludeDirs []string,
	skip ...string,
) (*Tree, error) {
	const errCtx = "building tree scanner"

	tr := &Tree{SkipPaths: make(map[string]struct{}, len(skip))}

	var err error

	tr.ExcludeFiles, err = compileAll(excludeFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	tr.ExcludeDirs, err = compileAll(excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, pa := range skip {
		abs, err := resolvePath(pa)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		tr.SkipPaths[abs] = struct{}{}
	}

	return tr, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pat, err)
		}

		out = append(out, re)
	}

	return out, nil
}

// Walk calls fn with the path of every eligible regular
// file under root. Paths are root joined with the entry's
// relative path. A root that is a symlink to a directory is
// resolved before walking; links below it are not followed.
// An unreadable subdirectory is logged and skipped; an
// unreadable root or an error from fn stops the walk and is
// returned.
func (tr *Tree) Walk(
	ctx context.Context,
	root string,
	fn func(path string) error,
) error {
	const errCtx = "walking tree"

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, root, err)
	}

	err = filepath.WalkDir(resolved, func(
		path string,
		de fs.DirEntry,
		walkErr error,
	) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == resolved {
				return walkErr
			}

			slog.Warn(
				"skipping unreadable entry",
				"path", path,
				"error", walkErr,
			)

			if de != nil && de.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if path == resolved {
			return nil
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}

		if de.IsDir() {
			if tr.excludedDir(rel) {
				slog.Debug("excluding directory", "path", path)

				return filepath.SkipDir
			}

			return nil
		}

		if !de.Type().IsRegular() {
			return nil
		}

		if tr.excludedFile(resolved, rel, de.Name()) {
			slog.Debug("excluding file", "path", path)

			return nil
		}

		return fn(filepath.Join(root, rel))
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, root, err)
	}

	return nil
}

func (tr *Tree) excludedDir(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, re := range tr.ExcludeDirs {
		if re.MatchString(rel) {
			return true
		}
	}

	return false
}

func (tr *Tree) excludedFile(absRoot, rel, name string) bool {
	for _, re := range tr.ExcludeFiles {
		if re.MatchString(name) {
			return true
		}
	}

	if len(tr.SkipPaths) == 0 {
		return false
	}

	_, skip := tr.SkipPaths[filepath.Join(absRoot, rel)]

	return skip
}

// resolvePath returns the absolute form of path with
// symlinks in its directory resolved. The file itself need
// not exist.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs, nil //nolint:nilerr // unresolvable dirs keep the plain absolute path
	}

	return filepath.Join(dir, filepath.Base(abs)), nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fi.IsDir()
}
