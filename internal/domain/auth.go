package domain

import "time"

// IssuedToken is a freshly signed access token.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
