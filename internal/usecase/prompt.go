package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"namecard-agent/internal/domain"
)

// extractionPrompt is the fixed instruction for turning a business-card photo
// into JSON. Fields the model cannot read are filled with "N/A" by instruction.
const extractionPrompt = `這是一張名片，你是一個名片秘書。請將以下資訊整理成 json 給我。
如果看不出來的，幫我填寫 N/A
只好 json 就好:
name, title, address, email, phone, company.
其中 phone 的內容格式為 #886-0123-456-789,1234. 沒有分機就忽略 ,1234`

// buildQueryPrompt embeds every stored card (tagged with its identifier) and
// the user's question into one retrieval prompt. Relevance ranking is entirely
// delegated to the model.
func buildQueryPrompt(question string, cards map[string]domain.Card) (string, error) {
	tagged := make([]map[string]any, 0, len(cards))
	for _, c := range sortedCards(cards) {
		tagged = append(tagged, cardToTaggedMap(c))
	}

	payload, err := json.Marshal(tagged)
	if err != nil {
		return "", fmt.Errorf("usecase: marshal cards for query prompt: %w", err)
	}

	return "你是一個名片助理，以下是所有名片資料（JSON 陣列），" +
		"請根據使用者輸入的查詢，回傳最相關的一或多張名片 JSON" +
		"（只回傳 JSON 陣列，不要多餘說明）。" +
		"每張名片物件中都要包含 'card_id'.\n" +
		"名片資料: " + string(payload) + "\n" +
		"查詢: " + question, nil
}

// cardToTaggedMap flattens a card plus its identifier for the query prompt.
func cardToTaggedMap(c identifiedCard) map[string]any {
	m := map[string]any{
		"card_id": c.ID,
		"name":    c.Card.Name,
		"title":   c.Card.Title,
		"company": c.Card.Company,
		"address": c.Card.Address,
		"phone":   c.Card.Phone,
		"email":   c.Card.Email,
	}
	if c.Card.Memo != "" {
		m["memo"] = c.Card.Memo
	}
	return m
}

// stripMarkdownFences removes the ```json fences some model responses wrap
// around otherwise valid JSON.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// decodeCardObjects decodes a model response into a list of raw card maps.
// A single JSON object is normalized to a one-element list, matching observed
// model variance for this field set.
func decodeCardObjects(raw string) ([]map[string]any, error) {
	cleaned := stripMarkdownFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("usecase: empty model response")
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return list, nil
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, fmt.Errorf("usecase: decode card objects: %w", err)
	}
	return []map[string]any{single}, nil
}

// cardFromMap normalizes a raw card map into a Card: keys are lower-cased and
// only the known contact fields are kept.
func cardFromMap(raw map[string]any) domain.Card {
	var card domain.Card
	for key, value := range raw {
		text, ok := value.(string)
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "name":
			card.Name = text
		case "title":
			card.Title = text
		case "company":
			card.Company = text
		case "address":
			card.Address = text
		case "phone":
			card.Phone = text
		case "email":
			card.Email = text
		case "memo":
			card.Memo = text
		case "created_at":
			card.CreatedAt = text
		}
	}
	return card
}

// stringField reads a string value from a raw card map regardless of key case.
func stringField(raw map[string]any, field string) string {
	for key, value := range raw {
		if !strings.EqualFold(key, field) {
			continue
		}
		if text, ok := value.(string); ok {
			return text
		}
	}
	return ""
}
