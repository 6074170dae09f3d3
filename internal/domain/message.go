package domain

// MessageType is the closed set of outbound reply surfaces.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageFlex  MessageType = "flex"
	MessageImage MessageType = "image"
)

// Message is one platform-agnostic outbound message. The delivery client
// translates it into the wire shape of the messaging API.
type Message struct {
	Type MessageType

	// Text messages.
	Text string

	// Flex messages: alt text plus the bubble payload.
	AltText  string
	Contents map[string]any

	// Image messages.
	OriginalContentURL string
	PreviewImageURL    string
}

// NewTextMessage builds a plain text reply.
func NewTextMessage(text string) Message {
	return Message{Type: MessageText, Text: text}
}

// NewImageMessage builds an image reply pointing at a public URL.
func NewImageMessage(url string) Message {
	return Message{Type: MessageImage, OriginalContentURL: url, PreviewImageURL: url}
}
