package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
	argonPrefix         = "argon2id"
)

// ErrMalformedHash is returned when a stored password hash cannot be decoded.
var ErrMalformedHash = errors.New("malformed password hash")

// dummyHash is compared against when the user does not exist so that login
// takes the same time for unknown usernames and wrong passwords.
var dummyHash = mustHash("not-a-real-password")

// GenerateSalt returns a random base64 encoded salt.
func GenerateSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPassword hashes plain with argon2id and a fresh salt. The result has
// the form "argon2id$<salt>$<hash>".
func HashPassword(plain string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return hashWithSalt(plain, salt)
}

func hashWithSalt(plain, salt string) (string, error) {
	saltBytes, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), saltBytes, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("%s$%s$%s", argonPrefix, salt, base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword compares plain against an encoded hash in constant time.
func VerifyPassword(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != argonPrefix {
		return false, ErrMalformedHash
	}
	candidate, err := hashWithSalt(plain, parts[1])
	if err != nil {
		return false, ErrMalformedHash
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(encoded)) == 1, nil
}

// BurnPasswordCheck performs a throwaway comparison for unknown users.
func BurnPasswordCheck(plain string) {
	_, _ = VerifyPassword(plain, dummyHash)
}

func mustHash(plain string) string {
	h, err := HashPassword(plain)
	if err != nil {
		panic(err)
	}
	return h
}
