package jwt

import (
	stderrors "errors"
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/internal/utils"
	"github.com/jrsteele09/go-jwt-server/token/keys"
	"github.com/rs/zerolog/log"
)

// VerifyError reports why a token failed verification. It matches
// errors.ErrInvalidToken and its Kind with errors.Is.
type VerifyError struct {
	Domain keys.Domain
	Kind   error // one of ErrTokenExpired, ErrTokenMalformed, ErrTokenSignature, ErrTokenUnsupported, ErrInvalidToken
	Err    error
}

func (e *VerifyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s token: %v", e.Domain, e.Kind)
	}
	return fmt.Sprintf("%s token: %v: %v", e.Domain, e.Kind, e.Err)
}

func (e *VerifyError) Unwrap() []error {
	errs := []error{e.Kind, errors.ErrInvalidToken}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Verify checks structure, signature and expiry of a token against a key domain
// and returns its claims. Every failure is logged with its cause.
func (p *Provider) Verify(rawToken string, domain keys.Domain) (*Claims, error) {
	claims, err := p.verify(rawToken, domain)
	if err != nil {
		logVerifyFailure(err)
		return nil, err
	}
	return claims, nil
}

func (p *Provider) verify(rawToken string, domain keys.Domain) (*Claims, error) {
	signer, err := p.keyRing.Signer(domain)
	if err != nil {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrTokenUnsupported, Err: err}
	}

	if strings.TrimSpace(rawToken) == "" {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrTokenMalformed, Err: fmt.Errorf("empty token")}
	}

	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(p.nowFunc),
	)

	token, err := parser.ParseWithClaims(rawToken, jwtlib.MapClaims{}, signer.GetVerificationKey)
	if err != nil {
		return nil, &VerifyError{Domain: domain, Kind: classify(err), Err: err}
	}
	if !token.Valid {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrInvalidToken}
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrTokenMalformed, Err: fmt.Errorf("error extracting claims from token")}
	}

	return claimsFromMap(mapClaims, domain)
}

func claimsFromMap(mapClaims jwtlib.MapClaims, domain keys.Domain) (*Claims, error) {
	sub, _ := mapClaims[claimSubject].(string)
	if sub == "" {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrTokenMalformed, Err: fmt.Errorf("token missing sub claim")}
	}

	tokenType, _ := mapClaims[claimTokenType].(string)
	if tokenType != domain.String() {
		return nil, &VerifyError{Domain: domain, Kind: errors.ErrTokenUnsupported, Err: fmt.Errorf("token_type %q does not match key domain", tokenType)}
	}

	claims := &Claims{
		Subject: sub,
		Domain:  domain,
	}
	claims.ID, _ = mapClaims[claimID].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	if domain == keys.DomainAccess {
		claims.Roles = utils.ToAnyStringSlice(mapClaims[claimRoles])
		claims.FirstName, _ = mapClaims[claimFirstName].(string)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case stderrors.Is(err, jwtlib.ErrTokenExpired):
		return errors.ErrTokenExpired
	case stderrors.Is(err, jwtlib.ErrTokenMalformed):
		return errors.ErrTokenMalformed
	case stderrors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return errors.ErrTokenSignature
	case stderrors.Is(err, jwtlib.ErrTokenUnverifiable):
		return errors.ErrTokenUnsupported
	default:
		return errors.ErrInvalidToken
	}
}

func logVerifyFailure(err error) {
	var verr *VerifyError
	if !stderrors.As(err, &verr) {
		log.Warn().Err(err).Msg("invalid token")
		return
	}

	msg := "invalid token"
	switch verr.Kind {
	case errors.ErrTokenExpired:
		msg = "token expired"
	case errors.ErrTokenUnsupported:
		msg = "unsupported jwt"
	case errors.ErrTokenMalformed:
		msg = "malformed jwt"
	case errors.ErrTokenSignature:
		msg = "invalid signature"
	}
	log.Warn().Err(verr.Err).Str("domain", verr.Domain.String()).Msg(msg)
}
