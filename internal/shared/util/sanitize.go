package util

import (
	"errors"
	"strings"
)

// CleanKey normalizes a relative object key and rejects traversal patterns.
func CleanKey(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", errors.New("invalid object key")
	}
	s := strings.TrimSpace(key)
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimLeft(s, "/")
	if s == "" {
		return "", errors.New("invalid object key")
	}
	return s, nil
}
