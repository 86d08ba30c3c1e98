package jwtx

import "github.com/golang-jwt/jwt/v5"

// HS256Signer mints tokens with a shared secret. The service never issues
// identity tokens itself; this exists for tests and local development.
type HS256Signer struct {
	secret []byte
}

func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
