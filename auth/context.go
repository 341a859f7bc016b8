package auth

import (
	"context"

	"github.com/jrsteele09/go-jwt-server/token/jwt"
)

type contextKey struct{}

// Authentication describes the caller of an API request, taken from a verified access token
type Authentication struct {
	Login     string   `json:"login"`
	FirstName string   `json:"firstName,omitempty"`
	Roles     []string `json:"roles"`
}

func (a *Authentication) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func authenticationFromClaims(claims *jwt.Claims) *Authentication {
	return &Authentication{
		Login:     claims.Subject,
		FirstName: claims.FirstName,
		Roles:     append([]string(nil), claims.Roles...),
	}
}

// WithAuthentication returns a copy of ctx carrying the caller's authentication
func WithAuthentication(ctx context.Context, a *Authentication) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// AuthInfo returns the authentication stored in ctx, if any
func AuthInfo(ctx context.Context) (*Authentication, bool) {
	a, ok := ctx.Value(contextKey{}).(*Authentication)
	return a, ok && a != nil
}
