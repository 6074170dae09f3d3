package usecase

import (
	"context"
	"errors"
	"fmt"

	"namecard-agent/internal/domain"
)

// mockModel implements ModelClient with canned responses.
type mockModel struct {
	textResp  string
	textErr   error
	imageResp string
	imageErr  error

	textCalls    int
	imageCalls   int
	lastPrompt   string
	lastImage    []byte
	lastMimeType string
}

func (m *mockModel) GenerateJSON(_ context.Context, prompt string) (string, error) {
	m.textCalls++
	m.lastPrompt = prompt
	return m.textResp, m.textErr
}

func (m *mockModel) GenerateJSONFromImage(_ context.Context, prompt string, image []byte, mimeType string) (string, error) {
	m.imageCalls++
	m.lastPrompt = prompt
	m.lastImage = image
	m.lastMimeType = mimeType
	return m.imageResp, m.imageErr
}

// mockStore implements CardStore over an in-memory map with injectable
// failures and call capture.
type mockStore struct {
	cards map[string]domain.Card

	getAllErr error
	getErr    error

	addID    string
	addErr   error
	addCalls int
	added    domain.Card

	memoErr    error
	memoCalls  int
	memoCardID string
	memoText   string

	fieldErr    error
	fieldCalls  int
	fieldCardID string
	fieldName   string
	fieldValue  string

	findErr     error
	findCalls   int
	removeErr   error
	removeCalls int
	removed     int
}

func newMockStore(cards map[string]domain.Card) *mockStore {
	if cards == nil {
		cards = map[string]domain.Card{}
	}
	return &mockStore{cards: cards, addID: "new-card-id"}
}

func (m *mockStore) GetAll(_ context.Context, _ string) (map[string]domain.Card, error) {
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	return m.cards, nil
}

func (m *mockStore) Get(_ context.Context, _ string, cardID string) (domain.Card, bool, error) {
	if m.getErr != nil {
		return domain.Card{}, false, m.getErr
	}
	card, ok := m.cards[cardID]
	return card, ok, nil
}

func (m *mockStore) Add(_ context.Context, _ string, card domain.Card) (string, error) {
	m.addCalls++
	m.added = card
	if m.addErr != nil {
		return "", m.addErr
	}
	m.cards[m.addID] = card
	return m.addID, nil
}

func (m *mockStore) UpdateMemo(_ context.Context, _ string, cardID, memo string) error {
	m.memoCalls++
	m.memoCardID = cardID
	m.memoText = memo
	if m.memoErr != nil {
		return m.memoErr
	}
	card := m.cards[cardID]
	card.Memo = memo
	m.cards[cardID] = card
	return nil
}

func (m *mockStore) UpdateField(_ context.Context, _ string, cardID, field, value string) error {
	m.fieldCalls++
	m.fieldCardID = cardID
	m.fieldName = field
	m.fieldValue = value
	if m.fieldErr != nil {
		return m.fieldErr
	}
	card, ok := m.cards[cardID]
	if !ok {
		return errors.New("mock: no such card")
	}
	switch field {
	case "phone":
		card.Phone = value
	case "name":
		card.Name = value
	case "email":
		card.Email = value
	}
	m.cards[cardID] = card
	return nil
}

func (m *mockStore) FindByEmail(_ context.Context, _ string, email string) (string, bool, error) {
	m.findCalls++
	if m.findErr != nil {
		return "", false, m.findErr
	}
	for id, card := range m.cards {
		if card.Email == email {
			return id, true, nil
		}
	}
	return "", false, nil
}

func (m *mockStore) RemoveDuplicates(_ context.Context, _ string) (int, error) {
	m.removeCalls++
	return m.removed, m.removeErr
}

// mockContents implements ContentFetcher.
type mockContents struct {
	data     []byte
	mimeType string
	err      error
	calls    int
	lastID   string
}

func (m *mockContents) GetMessageContent(_ context.Context, messageID string) ([]byte, string, error) {
	m.calls++
	m.lastID = messageID
	if m.err != nil {
		return nil, "", m.err
	}
	mime := m.mimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return m.data, mime, nil
}

// mockUploader implements ContactImageUploader.
type mockUploader struct {
	url    string
	err    error
	calls  int
	userID string
	cardID string
	png    []byte
}

func (m *mockUploader) Upload(_ context.Context, userID, cardID string, png []byte) (string, error) {
	m.calls++
	m.userID = userID
	m.cardID = cardID
	m.png = png
	if m.err != nil {
		return "", m.err
	}
	if m.url != "" {
		return m.url, nil
	}
	return fmt.Sprintf("https://img.example.com/%s/%s.png", userID, cardID), nil
}
