package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding and decoding functions
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new access tokens.
// The Raw field contains the raw token string returned to the client. The Exp
// field records when it expires. In the database only a SHA-256 hash of the
// raw string is stored for security reasons.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a donor. It takes the
// signing secret, the donor's UUID, the role claim and a TTL in minutes.
// The JWT includes standard claims: subject (sub), role, expiration (exp)
// and issued at (iat). The subject is the donor's UUID string, matching
// the utilizadores primary key.
func NewAccessToken(secret, donorID, role string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  donorID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically secure random token (raw) and
// its expiration time. Refresh tokens live longer than access tokens and
// are used to obtain new access tokens. The ttlDays parameter controls
// how many days the refresh token is valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string. Storing only the hash in the database prevents attackers from
// using stolen database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
