package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-jwt-server/auth"
	"github.com/jrsteele09/go-jwt-server/users"
	"github.com/rs/zerolog/log"
)

// RequireAuth is middleware that validates a Bearer access token and puts the
// caller's login, first name and roles in the request context (see auth.AuthInfo)
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "unauthorized", "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], auth.TokenTypeBearer) {
				writeJSONError(w, "unauthorized", "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				writeJSONError(w, "unauthorized", "Empty token", http.StatusUnauthorized)
				return
			}

			authentication, err := s.auth.Authenticate(token)
			if err != nil {
				writeJSONError(w, "unauthorized", "Invalid token", http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(auth.WithAuthentication(r.Context(), authentication)))
		}
	}
}

// RequireRole is middleware that checks the authenticated caller holds role.
// Should be chained after RequireAuth to ensure auth info is present
func (s *Server) RequireRole(role users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authentication, ok := auth.AuthInfo(r.Context())
			if !ok {
				writeJSONError(w, "unauthorized", "Authentication required", http.StatusUnauthorized)
				return
			}
			if !authentication.HasRole(string(role)) {
				log.Info().Str("login", authentication.Login).Str("role", string(role)).Msg("access denied: missing role")
				writeJSONError(w, "forbidden", "Role "+string(role)+" required", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}
