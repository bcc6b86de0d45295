// Package token issues and verifies the signed bearer credentials used by
// the admin API: long-lived session tokens and short-lived reset tokens.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates what a token may be used for.
type Kind string

const (
	// KindSession tokens carry no type claim.
	KindSession Kind = ""
	// KindReset tokens authorise a single password reset.
	KindReset Kind = "reset"
)

var (
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongKind is returned when a valid token is presented for the wrong purpose.
	ErrWrongKind = fmt.Errorf("%w: wrong token type", ErrInvalidToken)
)

// Claims is the payload of every token this package issues.
type Claims struct {
	Type         Kind  `json:"type,omitempty"`
	TokenVersion int64 `json:"tv,omitempty"`
	jwt.RegisteredClaims
}

// AdminID returns the subject the token was issued for.
func (c *Claims) AdminID() string {
	return c.Subject
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source, used for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer for the given secret.
func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs claims for subject with the given lifetime.
func (i *Issuer) Issue(subject string, claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)

	claims.Subject = subject
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueSession returns a session token bound to the admin's current token version.
func (i *Issuer) IssueSession(adminID string, tokenVersion int64, ttl time.Duration) (string, error) {
	signed, _, err := i.Issue(adminID, Claims{TokenVersion: tokenVersion}, ttl)
	return signed, err
}

// IssueReset returns a reset token whose jti identifies the stored reset record.
func (i *Issuer) IssueReset(adminID, resetID string, ttl time.Duration) (string, time.Time, error) {
	claims := Claims{Type: KindReset}
	claims.ID = resetID
	return i.Issue(adminID, claims, ttl)
}

// Verify parses tokenString and checks signature, expiry and kind.
func (i *Issuer) Verify(tokenString string, want Kind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.Type != want {
		return nil, ErrWrongKind
	}
	if want == KindReset && claims.ID == "" {
		return nil, fmt.Errorf("%w: missing token id", ErrInvalidToken)
	}
	return claims, nil
}

// FromHeader extracts the credential from an "Authorization: Bearer x" value.
func FromHeader(header string) (string, bool) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	return credential, credential != ""
}
