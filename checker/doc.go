// Package checker runs one integrity check over a directory tree. It
// loads the recorded baseline, fingerprints every file the walker
// yields, classifies each path as new, changed or unchanged, and saves
// the freshly built mapping as the next baseline. Paths recorded in
// the old baseline but no longer present are dropped without being
// reported.
package checker
