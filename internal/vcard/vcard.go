// Package vcard renders a contact record as a vCard 3.0 payload and encodes
// it into a QR code image for import into phone address books.
package vcard

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"namecard-agent/internal/domain"
)

const qrImageSize = 512

// Build returns the vCard 3.0 text for a card. Optional fields are omitted
// when empty; phone separators are stripped and memo text is escaped per the
// vCard spec.
func Build(card domain.Card) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		fmt.Sprintf("FN:%s", card.Name),
		fmt.Sprintf("N:%s;;;", card.Name),
	}

	if card.Company != "" {
		lines = append(lines, fmt.Sprintf("ORG:%s", card.Company))
	}
	if card.Title != "" {
		lines = append(lines, fmt.Sprintf("TITLE:%s", card.Title))
	}
	if card.Phone != "" {
		phone := strings.NewReplacer("-", "", " ", "").Replace(card.Phone)
		lines = append(lines, fmt.Sprintf("TEL;TYPE=WORK,VOICE:%s", phone))
	}
	if card.Email != "" {
		lines = append(lines, fmt.Sprintf("EMAIL;TYPE=WORK:%s", card.Email))
	}
	if card.Address != "" {
		// ADR slots: PO box; extended; street; city; region; postal; country.
		lines = append(lines, fmt.Sprintf("ADR;TYPE=WORK:;;%s;;;;", card.Address))
	}
	if card.Memo != "" {
		memo := strings.NewReplacer("\n", "\\n", ",", "\\,", ";", "\\;").Replace(card.Memo)
		lines = append(lines, fmt.Sprintf("NOTE:%s", memo))
	}

	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// EncodePNG renders the card's vCard as a QR code PNG. Low error correction
// keeps the code scannable at the data sizes a full contact produces.
func EncodePNG(card domain.Card) ([]byte, error) {
	png, err := qrcode.Encode(Build(card), qrcode.Low, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("vcard: encode qr code: %w", err)
	}
	return png, nil
}
