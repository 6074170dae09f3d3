package usecase

import (
	"context"
	"errors"
	"sort"

	"namecard-agent/internal/domain"
)

// identifiedCard pairs a record with its store-assigned identifier.
type identifiedCard struct {
	ID   string
	Card domain.Card
}

// QueryEngine answers a free-text question over a user's cards by delegating
// relevance ranking entirely to the model. Results are therefore not
// deterministic across calls; only the surrounding normalization is.
type QueryEngine struct {
	model ModelClient
}

func NewQueryEngine(model ModelClient) (*QueryEngine, error) {
	if model == nil {
		return nil, errors.New("usecase: model client must not be nil")
	}
	return &QueryEngine{model: model}, nil
}

// Query returns the cards the model considers relevant to the question,
// possibly none. With zero stored records the model is not invoked. Items in
// the model response lacking a card_id are dropped.
func (q *QueryEngine) Query(ctx context.Context, question string, cards map[string]domain.Card) ([]identifiedCard, error) {
	if len(cards) == 0 {
		return nil, nil
	}

	prompt, err := buildQueryPrompt(question, cards)
	if err != nil {
		return nil, newError(ErrorInternal, "query_prompt_error", err)
	}

	raw, err := q.model.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, newError(ErrorModelCall, "query_model_error", err)
	}

	objs, err := decodeCardObjects(raw)
	if err != nil {
		return nil, newDiagnosticError(ErrorBadModelOutput, "query_decode_error", raw, err)
	}

	matches := make([]identifiedCard, 0, len(objs))
	for _, obj := range objs {
		cardID := stringField(obj, "card_id")
		if cardID == "" {
			continue
		}
		matches = append(matches, identifiedCard{ID: cardID, Card: cardFromMap(obj)})
	}
	return matches, nil
}

// sortedCards orders a user's cards by creation time, oldest first, with the
// identifier as tie-breaker so prompt assembly is stable.
func sortedCards(cards map[string]domain.Card) []identifiedCard {
	out := make([]identifiedCard, 0, len(cards))
	for id, card := range cards {
		out = append(out, identifiedCard{ID: id, Card: card})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Card.CreatedAt != out[j].Card.CreatedAt {
			return out[i].Card.CreatedAt < out[j].Card.CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
