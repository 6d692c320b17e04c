package ragagent

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// idHexLen is the length of deterministic IDs in hex characters.
const idHexLen = 16

// DeterministicID hashes a canonical key into a stable 16-character hex ID.
// The same key always yields the same ID, which makes re-indexing
// reproducible: document, record, and node IDs are all derived from
// ancestor-id + position keys, never from counters or random values.
func DeterministicID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idHexLen]
}

// NewRunID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
// Used only for ingestion-run provenance, which is explicitly allowed to
// vary between otherwise identical runs.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix returns current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
