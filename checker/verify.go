package checker

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/byte4ever/treeaudit/digester"
)

// Status classifies a single verified file.
type Status string

const (
	StatusIntact      = Status(digester.VerdictIntact)
	StatusChanged     = Status(digester.VerdictChanged)
	StatusUnavailable = Status(digester.VerdictUnavailable)
	StatusUntracked   = Status("untracked")
)

// Verify checks one file, given by its path relative to
// root, against the baseline without rewriting it.
func (ch *Checker) Verify(root, rel string) (Status, error) {
	const errCtx = "verifying file"

	known, err := ch.Store.Load()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	key := path.Clean(filepath.ToSlash(rel))

	want, tracked := known[key]
	if !tracked {
		return StatusUntracked, nil
	}

	fingerprint := ch.Fingerprint
	if fingerprint == nil {
		fingerprint = digester.Calculate
	}

	out, err := fingerprint(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return Status(out.Compare(want)), nil
}
