package keys

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-jwt-server/internal/errors"
)

// JWT algorithm used by both key domains
const HS512 = "HS512"

const (
	// MinSecretLength is the smallest decoded secret accepted for HS512, the size of its 512-bit hash output
	MinSecretLength = 64
	// GeneratedSecretLength is the size of secrets produced by GenerateSecret
	GeneratedSecretLength = MinSecretLength
)

// Domain scopes signing and verification to one token class
type Domain string

const (
	DomainAccess  Domain = "access"
	DomainRefresh Domain = "refresh"
)

func (d Domain) String() string {
	return string(d)
}

func (d Domain) Valid() bool {
	return d == DomainAccess || d == DomainRefresh
}

// GenerateSecret returns a new random HS512 secret, base64 encoded
func GenerateSecret() (string, error) {
	secret := make([]byte, GeneratedSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate HMAC secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secret), nil
}

// DecodeSecret decodes a base64 secret (padded or raw) and checks its length
func DecodeSecret(encoded string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		secret, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidSecret, "secret is not valid base64")
		}
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: decoded secret is %d bytes, need at least %d", errors.ErrInvalidSecret, len(secret), MinSecretLength)
	}
	return secret, nil
}

// KeyRing holds one signer per key domain
type KeyRing struct {
	access  Signer
	refresh Signer
}

// NewKeyRing builds HMAC signers for both domains from base64 secrets.
// The two secrets must differ so that neither domain can verify the other's tokens.
func NewKeyRing(accessSecret, refreshSecret string) (*KeyRing, error) {
	access, err := DecodeSecret(accessSecret)
	if err != nil {
		return nil, fmt.Errorf("access secret: %w", err)
	}
	refresh, err := DecodeSecret(refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("refresh secret: %w", err)
	}
	if bytes.Equal(access, refresh) {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", errors.ErrInvalidSecret)
	}

	accessSigner, err := NewHMACSigner(DomainAccess, access)
	if err != nil {
		return nil, err
	}
	refreshSigner, err := NewHMACSigner(DomainRefresh, refresh)
	if err != nil {
		return nil, err
	}
	return &KeyRing{access: accessSigner, refresh: refreshSigner}, nil
}

// Signer returns the signer for a key domain
func (k *KeyRing) Signer(domain Domain) (Signer, error) {
	switch domain {
	case DomainAccess:
		return k.access, nil
	case DomainRefresh:
		return k.refresh, nil
	default:
		return nil, fmt.Errorf("unknown key domain: %q", domain)
	}
}
