package tokencheck

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unknown-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token := sign(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	})

	c, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "HS256", c.Algorithm)
	assert.True(t, c.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.True(t, c.IssuedAt.Equal(now))
	assert.Equal(t, time.Hour, c.TTL(now))
}

func TestInspect_UserIDFallback(t *testing.T) {
	token := sign(t, jwt.MapClaims{"user_id": "u-2", "exp": time.Now().Add(time.Hour).Unix()})
	c, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", c.Subject)
}

func TestInspect_Malformed(t *testing.T) {
	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := Inspect(token)
		assert.ErrorIs(t, err, ErrMalformed, token)
	}
}

func TestClaims_Validate(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{
			name:   "валидный",
			claims: Claims{Subject: "u", ExpiresAt: now.Add(time.Hour), IssuedAt: now.Add(-time.Minute)},
		},
		{
			name:   "iat в пределах расхождения часов",
			claims: Claims{Subject: "u", ExpiresAt: now.Add(time.Hour), IssuedAt: now.Add(30 * time.Second)},
		},
		{
			name:    "чужой sub",
			claims:  Claims{Subject: "other", ExpiresAt: now.Add(time.Hour)},
			wantErr: ErrSubjectMismatch,
		},
		{
			name:    "истёк",
			claims:  Claims{Subject: "u", ExpiresAt: now},
			wantErr: ErrExpired,
		},
		{
			name:    "нет exp",
			claims:  Claims{Subject: "u"},
			wantErr: ErrNoExpiry,
		},
		{
			name:    "iat в будущем",
			claims:  Claims{Subject: "u", ExpiresAt: now.Add(time.Hour), IssuedAt: now.Add(5 * time.Minute)},
			wantErr: ErrIssuedInFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claims.Validate("u", now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
