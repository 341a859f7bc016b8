package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-jwt-server/auth"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json"
	maxRequestBytes = 64 << 10
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RefreshTokenRequest is the body of POST /api/auth/token and POST /api/auth/refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginHandler exchanges credentials for an access and refresh token pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Malformed request body", http.StatusBadRequest)
			return
		}
		if req.Login == "" || req.Password == "" {
			writeJSONError(w, "invalid_request", "login and password are required", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// AccessTokenHandler issues a new access token for a current refresh token.
// An unusable refresh token yields 200 with null tokens.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Malformed request body", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.RenewAccessToken(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// RefreshHandler rotates a refresh token, returning a new token pair
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, "invalid_request", "Malformed request body", http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			s.writeAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse)
	}
}

// HelloHandler greets the authenticated caller
func (s *Server) HelloHandler(audience string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authentication, ok := auth.AuthInfo(r.Context())
		if !ok {
			writeJSONError(w, "unauthorized", "Authentication required", http.StatusUnauthorized)
			return
		}
		name := authentication.FirstName
		if name == "" {
			name = authentication.Login
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":        "Hello " + audience + " " + name + "!",
			"authentication": authentication,
		})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeAuthError maps token service failures onto HTTP. Unknown login and bad
// password share one body so the response does not reveal which logins exist.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrIdentityNotFound), errors.Is(err, auth.ErrBadCredentials):
		writeJSONError(w, "invalid_grant", "Invalid login or password", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSONError(w, "invalid_grant", "Invalid refresh token", http.StatusUnauthorized)
	default:
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("token request failed")
		writeJSONError(w, "server_error", "Token service unavailable", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an OAuth2 style error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
