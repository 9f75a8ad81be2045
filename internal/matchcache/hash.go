package matchcache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// EventHash computes the cache key for an event: a 64-character hex digest
// of the lowercased title and the sorted keyword set. Sorting makes the key
// insensitive to keyword order, so the same logical event always maps to the
// same entry.
func EventHash(title string, keywords []string) string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)

	normalized := strings.ToLower(title) + "|" + strings.Join(sorted, ",")
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])
}
