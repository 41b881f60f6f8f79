package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/route/auth"
)

var signingKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewManager_empty_key(t *testing.T) {
	t.Parallel()

	_, err := auth.NewManager(nil)
	require.ErrorIs(t, err, auth.ErrEmptyKey)
}

func TestManager_Authenticate(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := auth.Claims{UserID: "42", Role: auth.RoleAdmin}

	issuer, err := auth.NewManager(signingKey,
		auth.WithIssuer("tests"),
		auth.WithTTL(time.Minute),
		auth.WithClock(func() time.Time { return issued }),
	)
	require.NoError(t, err)
	token, err := issuer.NewAccessToken(claims)
	require.NoError(t, err)

	tests := map[string]struct {
		key    []byte
		opts   []auth.Option
		token  string
		expect auth.Authentication
	}{
		"valid token": {
			key:    signingKey,
			opts:   []auth.Option{auth.WithIssuer("tests"), auth.WithClock(func() time.Time { return issued.Add(30 * time.Second) })},
			token:  token,
			expect: auth.Authenticated{Claims: claims},
		},
		"expired token": {
			key:    signingKey,
			opts:   []auth.Option{auth.WithIssuer("tests"), auth.WithClock(func() time.Time { return issued.Add(2 * time.Minute) })},
			token:  token,
			expect: auth.ExpiredToken,
		},
		"wrong key": {
			key:    []byte("another-key-another-key-another!"),
			opts:   []auth.Option{auth.WithClock(func() time.Time { return issued })},
			token:  token,
			expect: auth.InvalidToken,
		},
		"wrong issuer": {
			key:    signingKey,
			opts:   []auth.Option{auth.WithIssuer("elsewhere"), auth.WithClock(func() time.Time { return issued })},
			token:  token,
			expect: auth.InvalidToken,
		},
		"garbage": {
			key:    signingKey,
			token:  "not.a.jwt",
			expect: auth.InvalidToken,
		},
		"missing": {
			key:    signingKey,
			expect: auth.MissingToken,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, err := auth.NewManager(tc.key, tc.opts...)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, m.Authenticate(tc.token))
		})
	}
}

func TestUnauthenticated_Reason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "token expired", auth.ExpiredToken.Reason())
	assert.Equal(t, "missing token", auth.MissingToken.String())
}
