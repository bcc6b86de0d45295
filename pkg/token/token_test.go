package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-0123456789"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestIssuer() (*Issuer, *clock) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	return NewIssuer(secret, WithClock(clk.now)), clk
}

func TestSessionRoundTrip(t *testing.T) {
	iss, _ := newTestIssuer()

	signed, err := iss.IssueSession("admin-1", 3, 7*24*time.Hour)
	require.NoError(t, err)

	claims, err := iss.Verify(signed, KindSession)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID())
	assert.EqualValues(t, 3, claims.TokenVersion)
	assert.Equal(t, KindSession, claims.Type)
}

func TestResetExpiryBoundary(t *testing.T) {
	iss, clk := newTestIssuer()
	start := clk.t

	signed, expiresAt, err := iss.IssueReset("admin-1", "reset-1", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, start.Add(5*time.Minute), expiresAt)

	clk.t = start.Add(5*time.Minute - time.Second)
	claims, err := iss.Verify(signed, KindReset)
	require.NoError(t, err)
	assert.Equal(t, "reset-1", claims.ID)

	clk.t = start.Add(5*time.Minute + time.Second)
	_, err = iss.Verify(signed, KindReset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestKindMismatch(t *testing.T) {
	iss, _ := newTestIssuer()

	session, err := iss.IssueSession("admin-1", 0, time.Hour)
	require.NoError(t, err)
	reset, _, err := iss.IssueReset("admin-1", "reset-1", time.Hour)
	require.NoError(t, err)

	_, err = iss.Verify(session, KindReset)
	assert.ErrorIs(t, err, ErrWrongKind)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify(reset, KindSession)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestVerifyRejects(t *testing.T) {
	iss, clk := newTestIssuer()
	other := NewIssuer("another-secret-0123456789", WithClock(clk.now))
	forged, err := other.IssueSession("admin-1", 0, time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin-1"}).SignedString([]byte(secret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "admin-1",
		"exp": clk.t.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not.a.token",
		"empty":        "",
		"wrong secret": forged,
		"no expiry":    noExp,
		"none alg":     none,
		"two segments": "abc.def",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := iss.Verify(tok, KindSession)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := FromHeader(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
