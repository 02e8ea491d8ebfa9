package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read buffer size used while streaming a
// file through the hash.
const ChunkSize = 4096

// ErrUnavailable marks a file that could not be opened for
// reading.
var ErrUnavailable = errors.New("file unavailable")

// Fingerprint is the lowercase hex SHA256 digest of a file's
// content.
type Fingerprint string

// String returns the hex digest.
func (fp Fingerprint) String() string {
	return string(fp)
}

// Outcome is the result of fingerprinting one file. When
// Unavailable is set the file could not be opened and
// Fingerprint is empty.
type Outcome struct {
	Fingerprint Fingerprint
	Size        int64
	Unavailable error
}

// OK reports whether the outcome carries a fingerprint.
func (o Outcome) OK() bool {
	return o.Unavailable == nil
}

// Calculate computes the SHA256 fingerprint of the file at
// path. Open failures are reported through
// Outcome.Unavailable; read failures after a successful open
// are returned as errors.
func Calculate(path string) (result Outcome, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path comes from the tree walk
	if err != nil {
		return Outcome{
			Unavailable: fmt.Errorf(
				"%w: %s: %w", ErrUnavailable, path, err,
			),
		}, nil
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	out, err := CalculateReader(fi)
	if err != nil {
		return Outcome{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return out, nil
}

// CalculateReader streams r through SHA256 in ChunkSize
// pieces and returns the resulting fingerprint and byte
// count.
func CalculateReader(r io.Reader) (Outcome, error) {
	const errCtx = "hashing stream"

	ha := sha256.New()
	buf := make([]byte, ChunkSize)

	// Hide WriterTo/ReaderFrom so the buffer bound holds.
	n, err := io.CopyBuffer(
		struct{ io.Writer }{ha},
		struct{ io.Reader }{r},
		buf,
	)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return Outcome{
		Fingerprint: Fingerprint(hex.EncodeToString(ha.Sum(nil))),
		Size:        n,
	}, nil
}

// Verdict classifies an outcome against an expected
// fingerprint.
type Verdict string

const (
	VerdictIntact      Verdict = "intact"
	VerdictChanged     Verdict = "changed"
	VerdictUnavailable Verdict = "unavailable"
)

// Compare checks the outcome against want. An unavailable
// outcome never matches.
func (o Outcome) Compare(want Fingerprint) Verdict {
	switch {
	case !o.OK():
		return VerdictUnavailable
	case o.Fingerprint != want:
		return VerdictChanged
	default:
		return VerdictIntact
	}
}
