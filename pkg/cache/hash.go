package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyPrefix namespaces every key written by repolens.
const KeyPrefix = "rl"

// partSep joins key parts. It cannot appear in repository names, markers or
// hex digests, so distinct part lists never collide.
const partSep = "\x1f"

// Key derives a deterministic fixed-width cache key for category and parts.
// The format is rl:<category>:<sha256 hex of parts joined by 0x1F>.
func Key(category string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, partSep)))
	return KeyPrefix + ":" + category + ":" + hex.EncodeToString(sum[:])
}

// CategoryOf extracts the category from a key produced by [Key].
// It returns "" for foreign keys.
func CategoryOf(key string) string {
	rest, ok := strings.CutPrefix(key, KeyPrefix+":")
	if !ok {
		return ""
	}
	category, _, ok := strings.Cut(rest, ":")
	if !ok {
		return ""
	}
	return category
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString is Hash for strings.
func HashString(s string) string {
	return Hash([]byte(s))
}
