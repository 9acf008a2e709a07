// Package checksum computes the content digests used as ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of content.
func Sum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// Match reports whether ifMatch is empty or equals the digest of content.
// An empty ifMatch disables the optimistic-concurrency check.
func Match(ifMatch, content string) bool {
	return ifMatch == "" || ifMatch == Sum(content)
}
