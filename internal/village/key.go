package village

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrKeyEmpty is returned when a catalog key is empty.
	ErrKeyEmpty = errors.New("catalog key must not be empty")

	// ErrKeyFormat is returned when a catalog key is not a lowercase slug.
	ErrKeyFormat = errors.New("catalog key must contain only lowercase alphanumeric characters and hyphens, and must not start or end with a hyphen")

	// ErrKeyDuplicate is returned when two entries of one table share a key.
	ErrKeyDuplicate = errors.New("duplicate catalog key")

	keyPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]*[a-z0-9])?$`)
)

// ValidateKey checks that key is a lowercase slug such as "ancestor-worship".
func ValidateKey(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrKeyFormat, key)
	}
	return nil
}
