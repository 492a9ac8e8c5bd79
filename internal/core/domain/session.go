package domain

import "time"

// Session is a bearer-token grant of a user's identity. The token is opaque
// and unguessable; possession of it is the whole proof.
//
// The login flows keep at most one active session per user by deactivating
// every prior active session before inserting the new one. The two steps are
// separate writes, not a transaction: two concurrent logins can each believe
// they hold the sole active session until the next sweep. That window is an
// accepted property of the design.
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
}

// Usable reports whether the session authorizes requests at the supplied
// moment: still flagged active and not yet expired.
func (s Session) Usable(at time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(at)
}
