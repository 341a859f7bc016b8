package keys

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.MapClaims) (string, error)

	// GetVerificationKey is a jwt.Keyfunc returning the key that verifies the token
	GetVerificationKey(token *jwt.Token) (any, error)

	// GetSigningMethod returns the JWT signing method used
	GetSigningMethod() jwt.SigningMethod

	// Domain returns the key domain the signer belongs to
	Domain() Domain
}

// HMACSigner implements Signer using symmetric HMAC-SHA512
type HMACSigner struct {
	domain Domain
	secret []byte
}

// NewHMACSigner creates a new HMAC signer for a key domain
func NewHMACSigner(domain Domain, secret []byte) (*HMACSigner, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("unknown key domain: %q", domain)
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: %s secret is %d bytes, need at least %d", errors.ErrInvalidSecret, domain, len(secret), MinSecretLength)
	}
	return &HMACSigner{
		domain: domain,
		secret: append([]byte(nil), secret...),
	}, nil
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token with HMAC: %w", h.domain, err)
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS512
}

func (h *HMACSigner) Domain() Domain {
	return h.domain
}
