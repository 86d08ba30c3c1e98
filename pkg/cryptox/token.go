package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SecretTokenBytes is the entropy of bearer secrets such as invite tokens:
// 256 bits, 43 base64url characters.
const SecretTokenBytes = 32

// NewSecretToken returns a random base64url token and the fingerprint to
// persist in its place. The token itself is only ever handed to its holder.
func NewSecretToken() (token, fingerprint string, err error) {
	buf := make([]byte, SecretTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate random token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, Fingerprint([]byte(token)), nil
}

// Fingerprint is the base64url SHA-256 digest of data. Stored token hashes
// and webhook body stamps use it.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
