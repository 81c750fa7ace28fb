package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// TestManager_IssueAndParse は発行したトークンが同じクレームで検証できることを確認します。
func TestManager_IssueAndParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		email  string
		role   identity.Role
	}{
		{"admin", "1", "admin@example.com", identity.RoleAdmin},
		{"organizer with hex id", "65f1c0ffee0000000000abcd", "org@example.com", identity.RoleOrganizer},
		{"player with tagged email", "42", "player+tag@example.com", identity.RolePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewManager("test-secret", time.Hour)
			token, issued, err := m.Issue(tt.userID, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.NotEmpty(t, issued.TokenID)

			got, err := m.Parse(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, got.UserID)
			assert.Equal(t, tt.email, got.Email)
			assert.Equal(t, tt.role, got.Role)
			assert.Equal(t, issued.TokenID, got.TokenID)
			assert.True(t, issued.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestManager_IssueUsesFreshTokenID(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)
	_, a, err := m.Issue("1", "a@example.com", identity.RolePlayer)
	require.NoError(t, err)
	_, b, err := m.Issue("1", "a@example.com", identity.RolePlayer)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

// TestManager_ParseRejects は不正なトークンがErrInvalidTokenになることを検証します。
func TestManager_ParseRejects(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret", time.Hour)
	valid, _, err := m.Issue("1", "a@example.com", identity.RoleAdmin)
	require.NoError(t, err)

	other := NewManager("other-secret", time.Hour)
	foreign, _, err := other.Issue("1", "a@example.com", identity.RoleAdmin)
	require.NoError(t, err)

	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue("1", "a@example.com", identity.RoleAdmin)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "jti": "x", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"jti": "x", "exp": time.Now().Add(time.Hour).Unix()})
	anonymous, err := noSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", valid + "x"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"alg none", unsigned},
		{"missing subject", anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"Bearer   ", "", false},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
