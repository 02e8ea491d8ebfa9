// Package baseline persists the mapping from relative file path to
// content fingerprint recorded by the last integrity check. The record
// is a single pretty-printed JSON object; a missing record loads as an
// empty mapping and every save replaces the previous record in full.
package baseline
