// Package config loads the optional YAML settings file. It tunes which
// entries the tree scanner ignores and how the report is rendered. The
// digest algorithm and the baseline location are fixed and have no
// settings.
package config
