package auth

import (
	"github.com/jrsteele09/go-jwt-server/internal/errors"
)

// The closed set of failures the token service reports. Token verification
// failures also match ErrInvalidToken through errors.Is.
var (
	ErrIdentityNotFound = errors.ErrUserNotFound
	ErrBadCredentials   = errors.ErrInvalidCredentials
	ErrInvalidToken     = errors.ErrInvalidToken
)

// IsAuthenticationError reports whether err is a caller-facing authentication
// failure rather than an internal fault.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrBadCredentials) ||
		errors.Is(err, ErrInvalidToken)
}
