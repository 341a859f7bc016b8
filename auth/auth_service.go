package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/token/jwt"
	"github.com/jrsteele09/go-jwt-server/token/keys"
	"github.com/jrsteele09/go-jwt-server/token/refresh"
	"github.com/jrsteele09/go-jwt-server/users"
	"github.com/rs/zerolog/log"
)

// AuthService issues access and refresh tokens and rotates refresh tokens.
// It is safe for concurrent use; the only shared state lives in the refresh repo.
type AuthService struct {
	users    users.UserRepo
	refresh  refresh.Repo
	provider *jwt.Provider
}

// NewAuthService initializes a new AuthService with required dependencies.
func NewAuthService(userRepo users.UserRepo, refreshRepo refresh.Repo, provider *jwt.Provider) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("[NewAuthService] users repo is required")
	}
	if refreshRepo == nil {
		return nil, fmt.Errorf("[NewAuthService] refresh repo is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("[NewAuthService] token provider is required")
	}

	return &AuthService{
		users:    userRepo,
		refresh:  refreshRepo,
		provider: provider,
	}, nil
}

// Login checks the credentials and issues an access and a refresh token.
// The refresh token replaces any refresh token previously issued to the login.
func (as *AuthService) Login(ctx context.Context, login, password string) (*TokenResponse, error) {
	user, err := as.lookupUser(login)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		log.Info().Str("login", login).Msg("login rejected: bad credentials")
		return nil, ErrBadCredentials
	}

	accessToken, err := as.provider.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Login] GenerateAccessToken")
	}
	refreshToken, err := as.provider.GenerateRefreshToken(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Login] GenerateRefreshToken")
	}

	if err := as.refresh.Put(ctx, user.Login, refreshToken); err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Login] refresh.Put")
	}

	log.Info().Str("login", user.Login).Msg("user logged in")
	return newTokenResponse(accessToken, refreshToken, as.accessExpiresIn()), nil
}

// RenewAccessToken issues a new access token for a current refresh token and
// leaves the refresh token and the refresh repo untouched. An invalid, expired
// or superseded refresh token is not an error: the response simply carries no tokens.
func (as *AuthService) RenewAccessToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := as.checkRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrInvalidToken) {
		return newTokenResponse("", "", 0), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.RenewAccessToken]")
	}

	user, err := as.lookupUser(claims.Subject)
	if err != nil {
		return nil, err
	}

	accessToken, err := as.provider.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.RenewAccessToken] GenerateAccessToken")
	}
	return newTokenResponse(accessToken, "", as.accessExpiresIn()), nil
}

// Refresh consumes a current refresh token and issues a new access and refresh
// token pair. The presented token is invalid from then on. Any token problem
// is returned as ErrInvalidToken and the caller has to log in again.
func (as *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := as.checkRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Refresh]")
	}

	user, err := as.lookupUser(claims.Subject)
	if err != nil {
		return nil, err
	}

	accessToken, err := as.provider.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Refresh] GenerateAccessToken")
	}
	nextRefreshToken, err := as.provider.GenerateRefreshToken(user)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Refresh] GenerateRefreshToken")
	}

	swapped, err := as.refresh.CompareAndSwap(ctx, user.Login, refreshToken, nextRefreshToken)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService.Refresh] refresh.CompareAndSwap")
	}
	if !swapped {
		log.Warn().Str("login", user.Login).Msg("refresh token consumed concurrently")
		return nil, fmt.Errorf("%w: refresh token already rotated", ErrInvalidToken)
	}

	log.Debug().Str("login", user.Login).Msg("refresh token rotated")
	return newTokenResponse(accessToken, nextRefreshToken, as.accessExpiresIn()), nil
}

// Authenticate verifies an access token and describes its bearer
func (as *AuthService) Authenticate(accessToken string) (*Authentication, error) {
	claims, err := as.provider.Verify(accessToken, keys.DomainAccess)
	if err != nil {
		return nil, err
	}
	return authenticationFromClaims(claims), nil
}

// checkRefreshToken verifies the token under the refresh key domain and checks
// that it is the one currently stored for its subject. Token problems match
// ErrInvalidToken; anything else is a repo failure.
func (as *AuthService) checkRefreshToken(ctx context.Context, refreshToken string) (*jwt.Claims, error) {
	claims, err := as.provider.Verify(refreshToken, keys.DomainRefresh)
	if err != nil {
		return nil, err
	}

	stored, err := as.refresh.Get(ctx, claims.Subject)
	if errors.Is(err, errors.ErrNotFound) {
		log.Warn().Str("login", claims.Subject).Msg("refresh token has no stored counterpart")
		return nil, fmt.Errorf("%w: refresh token not on record", ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		log.Warn().Str("login", claims.Subject).Msg("superseded refresh token presented")
		return nil, fmt.Errorf("%w: refresh token superseded", ErrInvalidToken)
	}
	return claims, nil
}

func (as *AuthService) lookupUser(login string) (*users.User, error) {
	user, err := as.users.GetByLogin(login)
	if errors.Is(err, errors.ErrNotFound) {
		log.Info().Str("login", login).Msg("identity not found")
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthService] users.GetByLogin")
	}
	return user, nil
}

func (as *AuthService) accessExpiresIn() int {
	return int(as.provider.TTL(keys.DomainAccess).Seconds())
}
