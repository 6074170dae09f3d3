package domain

// EventKind is the closed set of inbound webhook event variants.
type EventKind string

const (
	EventText     EventKind = "text"
	EventImage    EventKind = "image"
	EventPostback EventKind = "postback"
)

// Action identifies the button a user pressed on a rendered card.
type Action string

const (
	ActionAddMemo         Action = "add_memo"
	ActionEditCard        Action = "edit_card"
	ActionEditField       Action = "edit_field"
	ActionDownloadContact Action = "download_contact"
)

// Postback carries the decoded data of a button press.
type Postback struct {
	Action Action
	CardID string
	Field  string
}

// Event is one platform-agnostic inbound event. Exactly the fields for its
// Kind are populated: Text for text messages, MessageID for images (a handle
// for fetching the content), Postback for button presses.
type Event struct {
	Kind       EventKind
	UserID     string
	ReplyToken string
	Text       string
	MessageID  string
	Postback   Postback
}
