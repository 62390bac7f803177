package keyspace

import (
	"time"

	"github.com/akashmaji946/redikv/internal/expiry"
)

// Entry is a single keyspace record. expiration_handle is present iff
// expires_at is present: Go's zero expiry.Handle is never Valid, so a zero
// handle and a zero ExpiresAt always travel together.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
	Handle    expiry.Handle
}

func (e *Entry) hasTTL() bool { return e != nil && e.Handle.Valid() }

func (e *Entry) expired(now time.Time) bool {
	return e != nil && e.hasTTL() && !e.ExpiresAt.After(now)
}
