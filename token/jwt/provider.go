package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/token/keys"
	"github.com/jrsteele09/go-jwt-server/users"
)

const (
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// MinRefreshToAccessRatio is how many access lifetimes a refresh token must outlive at least
	MinRefreshToAccessRatio = 100
)

// Provider mints and verifies tokens for the access and refresh key domains
type Provider struct {
	keyRing    *keys.KeyRing
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time
}

type ProviderOption func(*Provider)

// WithTokenTTL sets the lifetime of access and refresh tokens
func WithTokenTTL(accessTTL, refreshTTL time.Duration) ProviderOption {
	return func(p *Provider) {
		p.accessTTL = accessTTL
		p.refreshTTL = refreshTTL
	}
}

// WithNowFunc overrides the clock used for issuing and verifying tokens
func WithNowFunc(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

func NewProvider(keyRing *keys.KeyRing, options ...ProviderOption) (*Provider, error) {
	if keyRing == nil {
		return nil, fmt.Errorf("[NewProvider] key ring is required")
	}

	p := &Provider{
		keyRing:    keyRing,
		accessTTL:  DefaultAccessTokenTTL,
		refreshTTL: DefaultRefreshTokenTTL,
		nowFunc:    time.Now,
	}
	for _, opt := range options {
		opt(p)
	}

	if err := ValidateTTLs(p.accessTTL, p.refreshTTL); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidateTTLs checks that both lifetimes are positive and that the refresh
// lifetime exceeds the access lifetime by at least two orders of magnitude.
func ValidateTTLs(accessTTL, refreshTTL time.Duration) error {
	if accessTTL <= 0 || refreshTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive (access %s, refresh %s)", errors.ErrInvalidConfig, accessTTL, refreshTTL)
	}
	if refreshTTL/accessTTL < MinRefreshToAccessRatio {
		return fmt.Errorf("%w: refresh lifetime %s must be at least %dx the access lifetime %s",
			errors.ErrInvalidConfig, refreshTTL, MinRefreshToAccessRatio, accessTTL)
	}
	return nil
}

// TTL returns the configured lifetime for a key domain
func (p *Provider) TTL(domain keys.Domain) time.Duration {
	if domain == keys.DomainRefresh {
		return p.refreshTTL
	}
	return p.accessTTL
}

// Mint signs claims under a key domain. Expiry and issue time are always
// computed from the provider clock; a fresh token ID is assigned when none is set.
func (p *Provider) Mint(claims Claims, domain keys.Domain) (string, error) {
	signer, err := p.keyRing.Signer(domain)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.Wrapf(errors.ErrInvalidToken, "[Provider.Mint] cannot mint %s token without a subject", domain)
	}

	now := p.nowFunc()
	id := claims.ID
	if id == "" {
		id = uuid.New().String()
	}

	mapClaims := jwtlib.MapClaims{
		claimSubject:   claims.Subject,                // The login the token was issued to
		claimIssuedAt:  now.Unix(),                    // Issued At
		claimExpiry:    now.Add(p.TTL(domain)).Unix(), // Expiry for this key domain
		claimID:        id,                            // Unique token ID, makes every minted token distinct
		claimTokenType: domain.String(),               // Key domain, checked again on verify
	}

	if domain == keys.DomainAccess {
		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}
		mapClaims[claimRoles] = roles
		mapClaims[claimFirstName] = claims.FirstName
	}

	return signer.Sign(mapClaims)
}

// GenerateAccessToken mints an access token carrying the user's roles and first name
func (p *Provider) GenerateAccessToken(user *users.User) (string, error) {
	return p.Mint(Claims{
		Subject:   user.Login,
		Roles:     user.RoleNames(),
		FirstName: user.FirstName,
	}, keys.DomainAccess)
}

// GenerateRefreshToken mints a refresh token; it carries the subject only
func (p *Provider) GenerateRefreshToken(user *users.User) (string, error) {
	return p.Mint(Claims{Subject: user.Login}, keys.DomainRefresh)
}
