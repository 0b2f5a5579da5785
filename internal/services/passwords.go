package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// dummyPasswordHash is compared against when the login email is unknown,
// so both failure paths pay the same hashing cost.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := hashPassword("tms-dummy-password")
	if err != nil {
		panic(fmt.Sprintf("failed to create dummy password hash: %v", err))
	}
	return hash
})

// comparePassword reports whether password matches hash. Besides
// argon2id it accepts the bcrypt hashes of accounts imported from
// the previous deployment.
func comparePassword(password, hash string) (bool, error) {
	if isBcryptHash(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return false, nil
			}
			return false, fmt.Errorf("failed to compare bcrypt hash: %w", err)
		}
		return true, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to compare argon2id hash: %w", err)
	}
	return match, nil
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
