// Package password owns credential hashing. Hashes are opaque one-way values
// with an embedded salt; nothing outside this package inspects them.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// Hash creates a bcrypt hash of the provided password. The output differs on
// every call for the same input; only Verify can check it.
func Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch, not an error; callers never learn why verification failed.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
