package config

import "time"

// JWT holds the signing secrets (base64) and token lifetimes
type JWT struct {
	settings Settings
}

var _ JWTConfig = JWT{}

func (j JWT) GetAccessSecret() string {
	return j.settings.AccessSecret
}

func (j JWT) GetRefreshSecret() string {
	return j.settings.RefreshSecret
}

func (j JWT) GetAccessTokenTTL() time.Duration {
	return j.settings.AccessTokenTTL
}

func (j JWT) GetRefreshTokenTTL() time.Duration {
	return j.settings.RefreshTokenTTL
}
