package security

import (
	"strconv"
	"unicode/utf16"
)

// LegacyHasher reproduces the placeholder digest of the first prototype so
// accounts exported from it can still log in. It is not a password hash in
// any meaningful sense: unsalted, 32 bits wide.
type LegacyHasher struct{}

func (LegacyHasher) Hash(password string) (string, error) {
	return LegacyDigest(password), nil
}

func (LegacyHasher) Verify(password, digest string) (bool, error) {
	return LegacyDigest(password) == digest, nil
}

// LegacyDigest folds the UTF-16 code units of s into a wrapping 32-bit
// accumulator (h*31 + c) and renders the magnitude in hex behind "hash_".
func LegacyDigest(s string) string {
	if s == "" {
		return "hash_0"
	}
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	magnitude := int64(h)
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return "hash_" + strconv.FormatInt(magnitude, 16)
}
