package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Expiry and signature failure are distinct so
// callers can give precise feedback ("log in again" vs "tampered token").
var (
	// ErrTokenExpired is returned when a structurally valid, correctly signed
	// token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed tokens, wrong signing methods
	// and signature mismatches.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the decoded, verified payload of an access token: the subject,
// its email and the role set as of issuance. Role changes after issuance do
// not propagate into already-issued tokens.
type Claims struct {
	UserID int64    `json:"-"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying access tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue creates a signed token for the user carrying a snapshot of its
	// current role set. Expiry is a fixed policy of the implementation.
	Issue(userID int64, email string, roles []string) (string, error)

	// Verify checks signature integrity first, then expiry, and returns the
	// decoded claims. Failures are ErrTokenInvalid or ErrTokenExpired.
	Verify(tokenString string) (*Claims, error)
}
