package domain

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a fresh 24-character lowercase hex identifier.
func NewID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("domain: rand read: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// IsID reports whether s looks like a 24-character hex identifier.
// Malformed ids are rejected at the HTTP boundary before any lookup.
func IsID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
