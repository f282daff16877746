package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize is the maximum number of bytes hashed from a serialized
// evaluation context. Large presentations are hashed by prefix only, which
// keeps hashing cost bounded while still identifying the input.
const MaxHashSize = 1024 * 1024 // 1MB

// HashContent computes the SHA-256 hash of content and returns it
// hex-encoded. Content beyond MaxHashSize does not contribute to the hash.
//
// Returns an empty string for empty content.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	contentToHash := content
	if len(content) > MaxHashSize {
		contentToHash = content[:MaxHashSize]
	}

	hash := sha256.Sum256(contentToHash)
	return hex.EncodeToString(hash[:])
}

// HashString hashes a string and returns the hex-encoded SHA-256 hash.
func HashString(content string) string {
	return HashContent([]byte(content))
}
