package utils

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateID generates an opaque random identifier. IDs are never reused.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateSessionID generates a unique signaling session ID
func GenerateSessionID() string {
	return GenerateID()
}

// GenerateShareID generates a unique screen share ID
func GenerateShareID() string {
	return GenerateID()
}

// GenerateToolID generates a unique interactive tool ID
func GenerateToolID() string {
	return GenerateID()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateOperationID generates a lexicographically sortable operation ID.
// Whiteboard operations are ordered by sequence number; the ULID form keeps
// exported logs naturally sorted as well.
func GenerateOperationID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}
