// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword  = errors.New("password must not be empty")
	ErrHashingFailed    = errors.New("password hashing failed")
	ErrComparisonFailed = errors.New("password does not match")
)

// HashPassword returns the bcrypt digest of a raw password at the library's
// default cost. Existing digests keep their original cost; a cost change
// only applies to passwords hashed after it.
func HashPassword(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(digest), nil
}

// ComparePassword checks a raw password against a stored digest. A mismatch
// returns ErrComparisonFailed; anything else (malformed digest, cost out of
// range) passes through for the caller to log.
func ComparePassword(digest, raw string) error {
	if digest == "" || raw == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrComparisonFailed
		}
		return err
	}
	return nil
}
