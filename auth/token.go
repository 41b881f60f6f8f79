package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrEmptyKey is returned by NewManager when no signing key is given.
var ErrEmptyKey = errors.New("auth: signing key is empty")

const roleClaim = "role"

// Role is a coarse-grained permission level carried in access tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims are the verified facts an access token carries.
type Claims struct {
	UserID string
	Role   Role
}

// Manager issues and verifies HS256-signed access tokens.
type Manager struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the token lifetime. The default is one hour.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		m.ttl = d
	}
}

// WithIssuer sets the iss claim written and required on tokens.
func WithIssuer(iss string) Option {
	return func(m *Manager) {
		m.issuer = iss
	}
}

// WithClock replaces time.Now for issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager signing with key.
func NewManager(key []byte, opts ...Option) (*Manager, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	m := &Manager{
		key: key,
		ttl: time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewAccessToken returns a signed token for c.
func (m *Manager) NewAccessToken(c Claims) (string, error) {
	now := m.now()
	b := jwt.NewBuilder().
		Subject(c.UserID).
		IssuedAt(now).
		Expiration(now.Add(m.ttl)).
		Claim(roleClaim, string(c.Role))
	if m.issuer != "" {
		b = b.Issuer(m.issuer)
	}
	tok, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, m.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

// Authenticate verifies raw and classifies the outcome. It never fails;
// every rejection is one of the Unauthenticated values.
func (m *Manager) Authenticate(raw string) Authentication {
	if raw == "" {
		return MissingToken
	}

	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, m.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	tok, err := jwt.Parse([]byte(raw), opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired()):
		return ExpiredToken
	case err != nil:
		return InvalidToken
	}

	v, ok := tok.Get(roleClaim)
	if !ok {
		return InvalidClaims
	}
	role, ok := v.(string)
	if !ok || tok.Subject() == "" {
		return InvalidClaims
	}
	return Authenticated{Claims: Claims{UserID: tok.Subject(), Role: Role(role)}}
}
