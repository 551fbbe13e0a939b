package model

import "encoding/json"

// Literal signal values exchanged during the challenge step.
const (
	// SignalVerify is sent by the client once it has changed its live icon
	// to the challenge value.
	SignalVerify = "Verify"
	// SignalVerified is the server's acknowledgement of a successful
	// challenge.
	SignalVerified = "Verified"
)

// Introduce is the first message a client sends after connecting. Region is
// kept as a raw string so the handshake can branch on the parse failure
// explicitly.
type Introduce struct {
	DisplayName string `json:"displayName"`
	Tag         string `json:"tag"`
	Region      string `json:"region"`
}

// RoutingType selects how an application message is delivered.
type RoutingType string

const (
	RoutingBroadcast RoutingType = "Broadcast"
	RoutingDirect    RoutingType = "Direct"
)

// Envelope is an application message from an authorized connection. Payload
// is opaque to the relay and forwarded verbatim.
type Envelope struct {
	RoutingType RoutingType     `json:"routingType"`
	MessageType string          `json:"messageType"`
	Payload     json.RawMessage `json:"payload"`
	Recipients  []Recipient     `json:"recipients,omitempty"`
}

// Recipient names a direct-message target. Region is accepted but ignored
// for matching; an account's home region is an attribute, not a key.
type Recipient struct {
	DisplayName string `json:"displayName"`
	Tag         string `json:"tag"`
	Region      string `json:"region,omitempty"`
}

// RoutedMessage is what recipients receive: the original payload annotated
// with the verified sender identity.
type RoutedMessage struct {
	SenderDisplayName string          `json:"senderDisplayName"`
	SenderTag         string          `json:"senderTag"`
	MessageType       string          `json:"messageType"`
	Payload           json.RawMessage `json:"payload"`
}
