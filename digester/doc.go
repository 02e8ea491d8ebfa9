// Package digester fingerprints file contents with SHA256. Files are
// streamed in fixed-size chunks so memory use does not depend on file
// size. A file that cannot be opened yields an unavailable Outcome
// rather than an error, leaving the skip policy to the caller.
package digester
