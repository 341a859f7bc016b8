package auth

import "github.com/jrsteele09/go-jwt-server/internal/utils"

const TokenTypeBearer = "Bearer"

// TokenResponse is the result of every token service operation.
// Absent tokens are nil and encode as JSON null.
type TokenResponse struct {
	// Type tells the client how to present the access token: "Authorization: Bearer <accessToken>"
	Type string `json:"type"`

	// AccessToken is the short-lived credential sent on every API call
	AccessToken *string `json:"accessToken"`

	// RefreshToken is only present after login and refresh rotation
	RefreshToken *string `json:"refreshToken"`

	// ExpiresIn is the access token lifetime in seconds, a hint only; the JWT exp claim is authoritative
	ExpiresIn int `json:"expiresIn,omitempty"`
}

func newTokenResponse(accessToken, refreshToken string, expiresIn int) *TokenResponse {
	return &TokenResponse{
		Type:         TokenTypeBearer,
		AccessToken:  utils.PtrIfSet(accessToken),
		RefreshToken: utils.PtrIfSet(refreshToken),
		ExpiresIn:    expiresIn,
	}
}

// Empty reports whether no token was issued
func (tr *TokenResponse) Empty() bool {
	return tr == nil || (tr.AccessToken == nil && tr.RefreshToken == nil)
}
