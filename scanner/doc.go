// Package scanner enumerates the regular files below a root directory.
// Entries are visited in directory-listing order. Directories,
// symlinks and other non-regular entries are never yielded, and
// symlinked directories are not followed. Tree carries optional
// exclusion rules for file names, directory paths and absolute paths.
package scanner
