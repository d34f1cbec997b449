package domain

import (
	"strings"
	"unicode"
)

// MaxQueryLen caps accepted product names; anything longer is noise or abuse.
const MaxQueryLen = 200

// NormalizeQuery canonicalizes a raw product name into the cache key used
// throughout the engine: surrounding whitespace trimmed, internal runs of
// whitespace collapsed to single spaces, lower-cased. Empty input, input
// containing control characters and input longer than MaxQueryLen are
// rejected so that malformed queries never reach the cache.
func NormalizeQuery(raw string) (string, error) {
	for _, r := range raw {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return "", ErrInvalidQuery
		}
	}
	key := strings.Join(strings.Fields(raw), " ")
	if key == "" {
		return "", ErrInvalidQuery
	}
	key = strings.ToLower(key)
	if len(key) > MaxQueryLen {
		return "", ErrInvalidQuery
	}
	return key, nil
}
