package auth

// Authentication is the outcome of verifying an access token. It is either
// Authenticated or one of the Unauthenticated values.
type Authentication interface {
	authentication()
}

// Authenticated carries the claims of a verified token.
type Authenticated struct {
	Claims Claims
}

func (Authenticated) authentication() {}

// Unauthenticated is a rejected token, with the reason reported to clients.
type Unauthenticated struct {
	reason string
}

func (Unauthenticated) authentication() {}

// Reason describes why the token was rejected.
func (u Unauthenticated) Reason() string { return u.reason }

func (u Unauthenticated) String() string { return u.reason }

// Rejection reasons.
var (
	InvalidToken  = Unauthenticated{reason: "invalid token"}
	ExpiredToken  = Unauthenticated{reason: "token expired"}
	MissingToken  = Unauthenticated{reason: "missing token"}
	InvalidClaims = Unauthenticated{reason: "invalid claims"}
)
