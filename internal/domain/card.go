package domain

// Card is one stored contact derived from a photographed business card.
// Unreadable fields are filled with "N/A" by the extraction prompt, not
// enforced here.
type Card struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Memo      string `json:"memo,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// EditableFields lists the card fields a user may rewrite through the
// field-picker, in display order.
var EditableFields = []string{"name", "title", "company", "address", "phone", "email"}

// FieldLabels maps editable field names to their zh-TW display labels.
var FieldLabels = map[string]string{
	"name":    "姓名",
	"title":   "職稱",
	"company": "公司",
	"address": "地址",
	"phone":   "電話",
	"email":   "Email",
}

// IsEditableField reports whether field may be targeted by an edit action.
func IsEditableField(field string) bool {
	_, ok := FieldLabels[field]
	return ok
}

// SampleCard returns the fixed card used by the "test" command.
func SampleCard() Card {
	return Card{
		Name:    "Kevin Dai",
		Title:   "Software Engineer",
		Company: "LINE Taiwan",
		Address: "Taipei, Taiwan",
		Phone:   "+886-123-456-789",
		Email:   "aa@bbb.cc",
		Memo:    "This is a test memo.",
	}
}
