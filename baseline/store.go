package baseline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// DefaultFileName is the record location used by the CLI,
// relative to the working directory.
const DefaultFileName = "file_hashes.json"

var (
	// ErrCorrupt marks a record that exists but does not
	// hold a path to fingerprint object.
	ErrCorrupt = errors.New("corrupt baseline")

	// ErrPersist marks a failure to write the record.
	ErrPersist = errors.New("persisting baseline")
)

// Store loads and saves a Mapping at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the record at path.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("baseline path is required")
	}

	return &Store{path: path}, nil
}

// Path returns the record location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the record. A missing record yields an empty
// mapping; unparsable content yields an error wrapping
// ErrCorrupt.
func (s *Store) Load() (Mapping, error) {
	const errCtx = "loading baseline"

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Mapping{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	m, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w: %s: %w", errCtx, ErrCorrupt, s.path, err,
		)
	}

	return m, nil
}

// Save replaces the record with m. The new content is
// written to a temporary file and renamed into place, so a
// failed save leaves the previous record untouched.
func (s *Store) Save(m Mapping) error {
	const errCtx = "saving baseline"

	if m == nil {
		m = Mapping{}
	}

	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("%s: %w: %w", errCtx, ErrPersist, err)
	}

	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%s: %w: %w", errCtx, ErrPersist, err)
	}

	return nil
}

// decode accepts exactly one JSON object whose values are
// all strings.
func decode(raw []byte) (Mapping, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("expected a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))

	var m Mapping
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing content after object")
	}

	if m == nil {
		m = Mapping{}
	}

	return m, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	committed := false

	defer func() {
		_ = tmp.Close() //nolint:errcheck // already closed on success
		if !committed {
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}

	if err := tmp.Chmod(perm); err != nil {
		return err
	}

	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	committed = true

	return nil
}
