package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooner-time/timeclock/internal/shared"
)

var (
	testConfig = GateConfig{
		Secret:   []byte("test-signing-secret"),
		Issuer:   "time-tracker-api",
		Audience: "time-tracker-app",
	}
	t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
)

func newTestPair(t *testing.T, at time.Time) (*Gate, *Issuer) {
	t.Helper()
	gate, err := NewGate(testConfig)
	require.NoError(t, err)
	issuer, err := NewIssuer(testConfig, time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return t0 }
	gate.now = func() time.Time { return at }
	return gate, issuer
}

func TestGateRoundTrip(t *testing.T) {
	gate, issuer := newTestPair(t, t0.Add(10*time.Minute))
	userID := uuid.New()

	token, expiresAt, err := issuer.Issue(userID, shared.RoleManager, "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Hour), expiresAt)

	principal, err := gate.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, shared.Principal{UserID: userID, Role: shared.RoleManager, Email: "boss@example.com"}, principal)
}

func TestGateRejectsAtAndAfterExpiry(t *testing.T) {
	_, issuer := newTestPair(t, t0)
	token, _, err := issuer.Issue(uuid.New(), shared.RoleEmployee, "")
	require.NoError(t, err)

	for _, at := range []time.Duration{59 * time.Minute, time.Hour, 2 * time.Hour} {
		gate, _ := newTestPair(t, t0.Add(at))
		_, err := gate.Authenticate(token)
		if at < time.Hour {
			assert.NoError(t, err, at)
			continue
		}
		assert.ErrorIs(t, err, shared.ErrUnauthorized, at)
	}
}

func TestGateRejectsForeignBinding(t *testing.T) {
	_, issuer := newTestPair(t, t0)
	token, _, err := issuer.Issue(uuid.New(), shared.RoleEmployee, "")
	require.NoError(t, err)

	variants := []GateConfig{
		{Secret: []byte("other-secret"), Issuer: testConfig.Issuer, Audience: testConfig.Audience},
		{Secret: testConfig.Secret, Issuer: "someone-else", Audience: testConfig.Audience},
		{Secret: testConfig.Secret, Issuer: testConfig.Issuer, Audience: "another-app"},
	}
	for _, cfg := range variants {
		gate, err := NewGate(cfg)
		require.NoError(t, err)
		gate.now = func() time.Time { return t0.Add(time.Minute) }
		_, err = gate.Authenticate(token)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	}
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		Role: string(shared.RoleEmployee),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    testConfig.Issuer,
			Audience:  jwt.ClaimStrings{testConfig.Audience},
			IssuedAt:  jwt.NewNumericDate(t0),
			ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
		},
	}
}

func TestGateRejectsMalformedCredentials(t *testing.T) {
	gate, issuer := newTestPair(t, t0.Add(time.Minute))
	good, _, err := issuer.Issue(uuid.New(), shared.RoleEmployee, "")
	require.NoError(t, err)
	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)

	noExp := validClaims()
	noExp.ExpiresAt = nil
	badSubject := validClaims()
	badSubject.Subject = "42"
	badRole := validClaims()
	badRole.Role = "admin"

	cases := map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"tampered":    parts[0] + "." + parts[1] + "x." + parts[2],
		"alg none":    signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims()),
		"hs512":       signClaims(t, jwt.SigningMethodHS512, testConfig.Secret, validClaims()),
		"missing exp": signClaims(t, jwt.SigningMethodHS256, testConfig.Secret, noExp),
		"bad subject": signClaims(t, jwt.SigningMethodHS256, testConfig.Secret, badSubject),
		"bad role":    signClaims(t, jwt.SigningMethodHS256, testConfig.Secret, badRole),
	}
	for name, raw := range cases {
		_, err := gate.Authenticate(raw)
		assert.ErrorIs(t, err, shared.ErrUnauthorized, name)
	}

	_, err = gate.Authenticate(signClaims(t, jwt.SigningMethodHS256, testConfig.Secret, validClaims()))
	assert.NoError(t, err, "hand-built claims with the right binding are accepted")
}

func TestGateRejectsPaddedRole(t *testing.T) {
	gate, _ := newTestPair(t, t0.Add(time.Minute))
	for _, role := range []string{" manager", "manager ", "Manager", "\nemployee"} {
		claims := validClaims()
		claims.Role = role
		_, err := gate.Authenticate(signClaims(t, jwt.SigningMethodHS256, testConfig.Secret, claims))
		assert.ErrorIs(t, err, shared.ErrUnauthorized, "%q", role)
	}
}

func TestNewGateRequiresBinding(t *testing.T) {
	_, err := NewGate(GateConfig{Issuer: "i", Audience: "a"})
	assert.Error(t, err)
	_, err = NewGate(GateConfig{Secret: []byte("s"), Audience: "a"})
	assert.Error(t, err)
	_, err = NewIssuer(GateConfig{Secret: []byte("s"), Issuer: "i"}, time.Hour)
	assert.Error(t, err)
}

func TestIssuerRejectsUnknownRole(t *testing.T) {
	_, issuer := newTestPair(t, t0)
	_, _, err := issuer.Issue(uuid.New(), shared.Role("admin"), "")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAuthorizeExactMatch(t *testing.T) {
	assert.NoError(t, Authorize(shared.RoleManager, shared.RoleManager))
	assert.NoError(t, Authorize(shared.RoleEmployee, shared.RoleEmployee))
	assert.ErrorIs(t, Authorize(shared.RoleEmployee, shared.RoleManager), shared.ErrForbidden)
	assert.ErrorIs(t, Authorize(shared.RoleManager, shared.RoleEmployee), shared.ErrForbidden)
}
