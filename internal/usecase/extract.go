package usecase

import (
	"context"
	"errors"

	"namecard-agent/internal/domain"
)

// ModelClient is the multimodal model boundary: one request type, "generate
// structured JSON from (prompt [, image])".
type ModelClient interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	GenerateJSONFromImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Extractor turns a business-card photo into a normalized contact record by
// delegating to the model. It validates and normalizes the response; it never
// judges the extraction quality itself.
type Extractor struct {
	model ModelClient
}

func NewExtractor(model ModelClient) (*Extractor, error) {
	if model == nil {
		return nil, errors.New("usecase: model client must not be nil")
	}
	return &Extractor{model: model}, nil
}

// Extract sends the image with the fixed instruction prompt and returns the
// normalized record. Model failure, an empty response, and undecodable JSON
// are surfaced as distinct error payloads; the latter two carry the raw model
// text as a truncated diagnostic for the end user.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (domain.Card, error) {
	if len(image) == 0 {
		return domain.Card{}, newError(ErrorInvalidInput, "empty_image", nil)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	raw, err := e.model.GenerateJSONFromImage(ctx, extractionPrompt, image, mimeType)
	if err != nil {
		return domain.Card{}, newError(ErrorModelCall, "extract_model_error", err)
	}

	objs, err := decodeCardObjects(raw)
	if err != nil {
		return domain.Card{}, newDiagnosticError(ErrorBadModelOutput, "extract_decode_error", raw, err)
	}
	// The vision model sometimes wraps the record in a list; use the first
	// element, and treat an empty list like an empty response.
	if len(objs) == 0 {
		return domain.Card{}, newDiagnosticError(ErrorBadModelOutput, "extract_empty_response", raw, nil)
	}

	return cardFromMap(objs[0]), nil
}
