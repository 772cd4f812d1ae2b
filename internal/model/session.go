package model

import "time"

// Session is a proof-of-login row. Only the hash of the client's token is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	IPAddress string
	UserAgent string
}

// SessionWithUser is the result of a successful session lookup.
type SessionWithUser struct {
	Session Session
	User    User
}

// Identity is what the request authenticator attaches to a request.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

// IssuedSession is returned by login and register. Token is the raw cookie value.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	User      UserResponse
}
