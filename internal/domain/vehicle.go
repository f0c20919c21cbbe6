package domain

import "time"

// Vehicle supplies the ordering key for the trip ledger and the registration
// used in user-facing messages. The engine reads it, never mutates it beyond
// registration.
type Vehicle struct {
	ID           string
	Registration string
	Make         string
	Model        string
	OwnerID      string
	CreatedAt    time.Time
}

// Actor is the opaque caller identity threaded through every operation.
// The engine uses it for ownership filtering and audit attribution; it does
// not validate the identity itself.
type Actor struct {
	UserID string
}
