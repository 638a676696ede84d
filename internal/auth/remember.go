package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// rememberTokenBytes gives 256 bits of entropy per token.
const rememberTokenBytes = 32

// GenerateRememberToken returns a new opaque bearer token. The raw value is
// handed to the client exactly once; only its hash is persisted.
func GenerateRememberToken() (string, error) {
	b := make([]byte, rememberTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashRememberToken derives the at-rest form of a remember token. A raw
// token never appears in storage or logs.
func HashRememberToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
