package session

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// IDPolicy selects how session identifiers are produced.
type IDPolicy string

const (
	// IDPolicyULID generates a unique, time-ordered ULID per session.
	IDPolicyULID IDPolicy = "ulid"
	// IDPolicyNone runs session-less: sessions carry no identifier.
	IDPolicyNone IDPolicy = "none"
)

// IDGenerator returns the identifier for a new session.
type IDGenerator func() string

// NewIDGenerator returns the generator for a policy.
func NewIDGenerator(policy IDPolicy) (IDGenerator, error) {
	switch policy {
	case IDPolicyULID, "":
		// ulid.Make is safe for concurrent use and monotonic within a millisecond.
		return func() string { return ulid.Make().String() }, nil
	case IDPolicyNone:
		return func() string { return "" }, nil
	default:
		return nil, fmt.Errorf("unknown session id policy %q", policy)
	}
}
