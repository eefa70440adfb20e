package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent returns the hex SHA-256 digest of s.
func HashContent(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashOptional hashes s when present; a nil input stays nil.
func HashOptional(s *string) *string {
	if s == nil {
		return nil
	}
	h := HashContent(*s)
	return &h
}
