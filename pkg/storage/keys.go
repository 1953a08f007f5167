package storage

import (
	"strings"
	"unicode"
)

// MaxKeyLength is the blob service limit on blob names.
const MaxKeyLength = 1024

// ValidateKey rejects keys the blob service would refuse or that could escape
// their prefix: empty keys, keys over MaxKeyLength, absolute or backslashed
// paths, control characters, and ".." segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.HasPrefix(key, "/") || strings.ContainsRune(key, '\\') {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	if strings.ContainsFunc(key, unicode.IsControl) {
		return ErrInvalidKey
	}
	return nil
}
