package model

// ConnectionID uniquely identifies a transport-level session. IDs are never
// reused; a reconnecting client gets a fresh one.
type ConnectionID string

// ConnectionState is the handshake state of a live connection. A rejected
// connection is closed and removed from the registry rather than held in a
// terminal state.
type ConnectionState int

const (
	// StatePending is a freshly opened connection with no identity yet.
	StatePending ConnectionState = iota
	// StateIdentified means the identity resolved but no challenge is out yet.
	StateIdentified
	// StateChallenged means a challenge icon has been issued and the
	// connection is awaiting confirmation.
	StateChallenged
	// StateAuthorized is the terminal success state; application messages
	// are routed from here on.
	StateAuthorized
)

func (s ConnectionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateIdentified:
		return "identified"
	case StateChallenged:
		return "challenged"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// RFC 6455 close codes used by the relay.
const (
	CloseCodeNormal          = 1000
	CloseCodeInvalidData     = 1007
	CloseCodePolicyViolation = 1008
)

// CloseReason pairs a websocket close code with the reason text sent to the
// peer. The texts are part of the wire protocol; clients match on them.
type CloseReason struct {
	Code int
	Text string
}

var (
	// CloseNormal is used when the peer hung up or the server is shutting
	// down; no policy was violated.
	CloseNormal = CloseReason{CloseCodeNormal, ""}

	// CloseInvalidJSON rejects an unparseable client message.
	CloseInvalidJSON = CloseReason{CloseCodePolicyViolation, "Invalid JSON"}

	// CloseMalformedIntroduction rejects an introduction with missing or
	// structurally invalid fields. Same reason text as CloseInvalidJSON but
	// classed as invalid data rather than a policy violation.
	CloseMalformedIntroduction = CloseReason{CloseCodeInvalidData, "Invalid JSON"}

	// CloseInvalidRiotID rejects an identity the provider cannot resolve.
	CloseInvalidRiotID = CloseReason{CloseCodePolicyViolation, "Invalid Riot ID"}

	// CloseWrongRegion rejects an account with no presence in the claimed
	// region.
	CloseWrongRegion = CloseReason{CloseCodePolicyViolation, "Wrong PlayerRegion"}

	// CloseInvalidIcon rejects a confirmation whose live icon does not match
	// the issued challenge.
	CloseInvalidIcon = CloseReason{CloseCodePolicyViolation, "Invalid Icon"}

	// CloseUnauthorized rejects a message that is not the expected step for
	// the connection's current state.
	CloseUnauthorized = CloseReason{CloseCodePolicyViolation, "Unauthorized"}

	// CloseTimedOut rejects a connection that failed to authorize within the
	// handshake window.
	CloseTimedOut = CloseReason{CloseCodePolicyViolation, "Timed out"}

	// CloseInvalidRouting rejects an authorized peer that sent an envelope
	// with an unknown routing type.
	CloseInvalidRouting = CloseReason{CloseCodePolicyViolation, "Invalid Message Routing Type"}
)
