package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the fixed work factor. It is embedded here rather
	// than per-record so verification stays deterministic across the
	// deployment's lifetime; every stored credential was derived with it.
	pbkdf2Iterations = 100_000
	saltLength       = 16
	keyLength        = sha256.Size
)

// HashPassword derives a PBKDF2-HMAC-SHA256 credential for the password using
// a fresh random salt. The returned value encodes salt and hash as
// "<salt_hex>:<hash_hex>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	// The salt participates in the derivation as its hex form, matching the
	// stored encoding, so a credential round-trips through its string form.
	saltHex := hex.EncodeToString(salt)
	sum := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, keyLength, sha256.New)

	return saltHex + ":" + hex.EncodeToString(sum), nil
}

// VerifyPassword re-derives the hash of password with the salt extracted from
// the stored credential and compares in constant time. Malformed credentials
// (missing separator, bad hex) report false rather than an error.
func VerifyPassword(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}

	saltHex, hashHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return false
	}

	expected, err := hex.DecodeString(hashHex)
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
