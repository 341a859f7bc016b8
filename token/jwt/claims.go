package jwt

import (
	"time"

	"github.com/jrsteele09/go-jwt-server/token/keys"
)

// Claim names carried on the wire
const (
	claimSubject   = "sub"
	claimExpiry    = "exp"
	claimIssuedAt  = "iat"
	claimID        = "jti"
	claimTokenType = "token_type"
	claimRoles     = "roles"
	claimFirstName = "firstName"
)

// Claims is the signed payload of a token. Roles and FirstName are a snapshot
// taken when an access token is minted and are empty on refresh tokens.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	ID        string
	Domain    keys.Domain
	Roles     []string
	FirstName string
}
