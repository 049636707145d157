// Package auth verifies and issues the HS256 bearer tokens that carry a caller's
// identity and role.
package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sngm3741/mess-finder/api/internal/config"
	"github.com/sngm3741/mess-finder/api/internal/domain"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Claims are the token claims. Role is empty for tokens minted by the end-user
// identity provider, which means a plain user.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// Identity is a verified caller.
type Identity struct {
	Principal domain.Principal
	Name      string
}

// Verifier checks bearer tokens.
type Verifier struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{cfg: cfg, now: time.Now}
}

// Verify validates signature, issuer, audience and lifetime, then builds the
// principal named by the role claim.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if len(v.cfg.Secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(30 * time.Second),
		jwt.WithTimeFunc(v.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.cfg.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.cfg.Issuer != "" && claims.Issuer != v.cfg.Issuer {
		return nil, ErrInvalidToken
	}
	if v.cfg.Audience != "" && !slices.Contains(claims.Audience, v.cfg.Audience) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	principal, err := domain.NewPrincipal(claims.Subject, claims.Role)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{Principal: principal, Name: claims.Name}, nil
}

// Issuer mints tokens for owner and admin logins.
type Issuer struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewIssuer(cfg config.JWTConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Issue signs a token for principal valid for the configured TTL.
func (i *Issuer) Issue(principal domain.Principal, name string) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.cfg.TTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.PrincipalID(),
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: principal.Role(),
		Name: name,
	}
	if i.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.cfg.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
