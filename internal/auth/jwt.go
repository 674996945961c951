// Package auth resolves bearer tokens to authenticated users: JWT
// issuance/verification and the Discord OAuth2 exchange used to obtain a
// user's identity before minting one.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the JWT payload: {id, salt}, matching
// original_source/rickchurch/auth.py. salt must match the user's current
// key_salt in the database or the token is considered invalidated (e.g.
// after a token reset).
type Claims struct {
	UserID int64  `json:"id"`
	Salt   string `json:"salt"`
	jwt.RegisteredClaims
}

// ErrInvalidToken covers any decode/signature/claims failure.
var ErrInvalidToken = errors.New("auth: invalid token")

// Signer mints and verifies HS256 JWTs.
type Signer struct {
	secret []byte
}

// NewSigner builds a Signer from the configured JWT_SECRET.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Issue mints a new token for userID with the given salt. Re-issuing a
// token for a user (after a salt rotation) invalidates any token minted
// with the old salt, since verification compares against the database's
// current key_salt.
func (s *Signer) Issue(userID int64, salt string) (string, error) {
	claims := Claims{
		UserID: userID,
		Salt:   salt,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates the signature of tokenString, returning the
// embedded claims. It does NOT check the salt against the database — the
// caller must do that (see Authorizer.Authorize in middleware.go), since the
// Signer has no database access.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
