package negotiate

// MessageType identifies a structured message posted by the renderer back
// to the host.
type MessageType int

// Renderer message types.
const (
	MessageDimensionRequest MessageType = iota
	MessageConnected
	MessageDisconnected
	MessageReconnecting
	MessageCopy
)

// String returns a human-readable message type.
func (t MessageType) String() string {
	switch t {
	case MessageDimensionRequest:
		return "dimensionRequest"
	case MessageConnected:
		return "connected"
	case MessageDisconnected:
		return "disconnected"
	case MessageReconnecting:
		return "reconnecting"
	case MessageCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// Message is the closed set of renderer-to-host messages. Proposal is set
// for MessageDimensionRequest, Text for MessageCopy.
type Message struct {
	Type     MessageType
	Proposal *Proposal
	Text     string
}
