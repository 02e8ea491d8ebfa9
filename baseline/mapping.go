package baseline

import "github.com/byte4ever/treeaudit/digester"

// Mapping maps slash-separated paths, relative to the scan
// root, to their fingerprints.
type Mapping map[string]digester.Fingerprint
