// Package render builds the outbound reply surfaces: flex-message card
// layouts and plain confirmation/error texts. Everything here is pure; the
// same record and identifier always produce the same message value.
package render

import (
	"fmt"

	"namecard-agent/internal/domain"
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// NamecardFlex renders one stored card as a flex bubble: company/name/title
// header, phone/email/address rows, memo section, and the three postback
// buttons (add memo, edit card, download contact).
func NamecardFlex(card domain.Card, cardID string) domain.Message {
	name := orNA(card.Name)
	memo := card.Memo
	if memo == "" {
		memo = "尚無備忘錄"
	}

	bubble := map[string]any{
		"type": "bubble",
		"size": "giga",
		"header": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{
					"type":   "box",
					"layout": "vertical",
					"contents": []any{
						map[string]any{"type": "text", "text": orNA(card.Company), "color": "#ffffff", "size": "lg"},
						map[string]any{"type": "text", "text": name, "color": "#ffffff", "size": "xxl", "weight": "bold"},
						map[string]any{"type": "text", "text": orNA(card.Title), "color": "#ffffff", "size": "md"},
					},
				},
			},
			"paddingAll":      "20px",
			"backgroundColor": "#0367D3",
		},
		"body": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				bodyRow("Phone", orNA(card.Phone), false),
				bodyRow("Email", orNA(card.Email), false),
				bodyRow("Address", orNA(card.Address), true),
				map[string]any{"type": "separator", "margin": "xxl"},
				map[string]any{
					"type":   "box",
					"layout": "vertical",
					"margin": "md",
					"contents": []any{
						map[string]any{"type": "text", "text": "備忘錄", "size": "md", "color": "#555555"},
						map[string]any{"type": "text", "text": memo, "color": "#111111", "size": "sm", "wrap": true, "margin": "md"},
					},
				},
			},
		},
		"footer": map[string]any{
			"type":    "box",
			"layout":  "vertical",
			"spacing": "sm",
			"contents": []any{
				map[string]any{
					"type":    "box",
					"layout":  "horizontal",
					"spacing": "sm",
					"contents": []any{
						map[string]any{
							"type":   "button",
							"style":  "link",
							"height": "sm",
							"flex":   1,
							"action": postbackAction(
								"新增/修改記事",
								fmt.Sprintf("action=add_memo&card_id=%s", cardID),
								fmt.Sprintf("我想為 %s 新增記事", name),
							),
						},
						map[string]any{
							"type":   "button",
							"style":  "link",
							"height": "sm",
							"flex":   1,
							"action": postbackAction(
								"編輯資料",
								fmt.Sprintf("action=edit_card&card_id=%s", cardID),
								fmt.Sprintf("我想編輯 %s 的名片", name),
							),
						},
					},
				},
				map[string]any{
					"type":   "button",
					"style":  "primary",
					"height": "sm",
					"margin": "sm",
					"action": postbackAction(
						"📥 加入通訊錄",
						fmt.Sprintf("action=download_contact&card_id=%s", cardID),
						fmt.Sprintf("下載 %s 的聯絡人資訊", name),
					),
				},
			},
		},
		"styles": map[string]any{
			"footer": map[string]any{"separator": true},
		},
	}

	return domain.Message{
		Type:     domain.MessageFlex,
		AltText:  fmt.Sprintf("%s 的名片", name),
		Contents: bubble,
	}
}

// EditOptionsFlex renders the field-picker bubble: one postback button per
// editable field.
func EditOptionsFlex(cardID, cardName string) domain.Message {
	buttons := make([]any, 0, len(domain.EditableFields))
	for _, field := range domain.EditableFields {
		label := domain.FieldLabels[field]
		buttons = append(buttons, map[string]any{
			"type":   "button",
			"style":  "primary",
			"margin": "sm",
			"action": postbackAction(
				label,
				fmt.Sprintf("action=edit_field&card_id=%s&field=%s", cardID, field),
				fmt.Sprintf("我想修改 %s 的 %s", cardName, label),
			),
		})
	}

	bubble := map[string]any{
		"type": "bubble",
		"body": map[string]any{
			"type":   "box",
			"layout": "vertical",
			"contents": []any{
				map[string]any{
					"type":   "text",
					"text":   fmt.Sprintf("請問您想編輯「%s」的哪個欄位？", cardName),
					"weight": "bold",
					"size":   "lg",
					"wrap":   true,
				},
				map[string]any{
					"type":     "box",
					"layout":   "vertical",
					"margin":   "lg",
					"spacing":  "sm",
					"contents": buttons,
				},
			},
		},
	}

	return domain.Message{
		Type:     domain.MessageFlex,
		AltText:  fmt.Sprintf("編輯 %s 的資料", cardName),
		Contents: bubble,
	}
}

func bodyRow(label, value string, wrap bool) map[string]any {
	valueCell := map[string]any{
		"type":  "text",
		"text":  value,
		"size":  "sm",
		"color": "#111111",
		"align": "end",
		"flex":  3,
	}
	if wrap {
		valueCell["wrap"] = true
	}
	return map[string]any{
		"type":   "box",
		"layout": "horizontal",
		"margin": "md",
		"contents": []any{
			map[string]any{"type": "text", "text": label, "size": "sm", "color": "#555555", "flex": 1},
			valueCell,
		},
	}
}

func postbackAction(label, data, displayText string) map[string]any {
	return map[string]any{
		"type":        "postback",
		"label":       label,
		"data":        data,
		"displayText": displayText,
	}
}
