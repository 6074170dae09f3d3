package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"namecard-agent/internal/domain"
	"namecard-agent/internal/render"
	"namecard-agent/internal/vcard"
)

const maxQueryResults = 5

// CardStore is the persistence boundary the router depends on. Every write is
// best-effort: backend failures come back as errors and are converted to
// user-facing text here.
type CardStore interface {
	GetAll(ctx context.Context, userID string) (map[string]domain.Card, error)
	Get(ctx context.Context, userID, cardID string) (domain.Card, bool, error)
	Add(ctx context.Context, userID string, card domain.Card) (string, error)
	UpdateMemo(ctx context.Context, userID, cardID, memo string) error
	UpdateField(ctx context.Context, userID, cardID, field, value string) error
	FindByEmail(ctx context.Context, userID, email string) (string, bool, error)
	RemoveDuplicates(ctx context.Context, userID string) (int, error)
}

// ContentFetcher retrieves the binary content of an inbound image message.
type ContentFetcher interface {
	GetMessageContent(ctx context.Context, messageID string) (data []byte, mimeType string, err error)
}

// ContactImageUploader stores a rendered contact QR image and returns its
// public URL.
type ContactImageUploader interface {
	Upload(ctx context.Context, userID, cardID string, png []byte) (string, error)
}

// Router is the one stateful piece: it dispatches each inbound event on
// (event kind × per-user conversation state) and returns the reply messages.
// Downstream failures degrade to text replies; Handle never fails the event.
type Router struct {
	store     CardStore
	extractor *Extractor
	query     *QueryEngine
	contents  ContentFetcher
	uploader  ContactImageUploader
	states    *StateStore
	logger    *zap.Logger
}

func NewRouter(
	store CardStore,
	extractor *Extractor,
	query *QueryEngine,
	contents ContentFetcher,
	uploader ContactImageUploader,
	states *StateStore,
	logger *zap.Logger,
) (*Router, error) {
	if store == nil {
		return nil, errors.New("usecase: card store must not be nil")
	}
	if extractor == nil {
		return nil, errors.New("usecase: extractor must not be nil")
	}
	if query == nil {
		return nil, errors.New("usecase: query engine must not be nil")
	}
	if contents == nil {
		return nil, errors.New("usecase: content fetcher must not be nil")
	}
	if uploader == nil {
		return nil, errors.New("usecase: uploader must not be nil")
	}
	if states == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		store:     store,
		extractor: extractor,
		query:     query,
		contents:  contents,
		uploader:  uploader,
		states:    states,
		logger:    logger,
	}, nil
}

// Handle processes one inbound event to completion and returns the reply
// messages (at most 5, the delivery channel's limit per reply).
func (r *Router) Handle(ctx context.Context, ev domain.Event) []domain.Message {
	switch ev.Kind {
	case domain.EventText:
		return r.handleText(ctx, ev)
	case domain.EventImage:
		return r.handleImage(ctx, ev)
	case domain.EventPostback:
		return r.handlePostback(ctx, ev)
	default:
		r.logger.Warn("unknown event kind", zap.String("kind", string(ev.Kind)))
		return nil
	}
}

func (r *Router) handleText(ctx context.Context, ev domain.Event) []domain.Message {
	// Pending multi-turn input is consumed and cleared by the next text
	// message regardless of outcome.
	state := r.states.Take(ev.UserID)
	switch state.Pending {
	case PendingMemo:
		return r.completeMemo(ctx, ev, state)
	case PendingFieldEdit:
		return r.completeFieldEdit(ctx, ev, state)
	}

	switch ev.Text {
	case "test":
		return []domain.Message{render.NamecardFlex(domain.SampleCard(), "test_card_id")}
	case "list":
		return r.handleList(ctx, ev.UserID)
	case "remove":
		return r.handleRemove(ctx, ev.UserID)
	case "stats":
		return r.handleStats(ctx, ev.UserID)
	default:
		return r.handleSmartQuery(ctx, ev.UserID, ev.Text)
	}
}

func (r *Router) completeMemo(ctx context.Context, ev domain.Event, state ConvState) []domain.Message {
	if err := r.store.UpdateMemo(ctx, ev.UserID, state.CardID, ev.Text); err != nil {
		r.logger.Error("update memo failed",
			zap.String("userID", ev.UserID), zap.String("cardID", state.CardID), zap.Error(err))
		return textReply(render.MemoUpdateFailedText())
	}
	return textReply(render.MemoUpdatedText())
}

func (r *Router) completeFieldEdit(ctx context.Context, ev domain.Event, state ConvState) []domain.Message {
	if err := r.store.UpdateField(ctx, ev.UserID, state.CardID, state.Field, ev.Text); err != nil {
		r.logger.Error("update field failed",
			zap.String("userID", ev.UserID), zap.String("cardID", state.CardID),
			zap.String("field", state.Field), zap.Error(err))
		return textReply(render.FieldUpdateFailedText())
	}

	updated, found, err := r.store.Get(ctx, ev.UserID, state.CardID)
	if err != nil || !found {
		if err != nil {
			r.logger.Error("refetch after field edit failed",
				zap.String("cardID", state.CardID), zap.Error(err))
		}
		return textReply(render.FieldUpdatedNotShownText())
	}
	return []domain.Message{
		domain.NewTextMessage(render.FieldUpdatedText()),
		render.NamecardFlex(updated, state.CardID),
	}
}

func (r *Router) handleList(ctx context.Context, userID string) []domain.Message {
	cards, err := r.store.GetAll(ctx, userID)
	if err != nil {
		r.logger.Error("list cards failed", zap.String("userID", userID), zap.Error(err))
		return textReply(render.RequestFailedText())
	}
	return textReply(render.CardCountText(len(cards)))
}

func (r *Router) handleRemove(ctx context.Context, userID string) []domain.Message {
	removed, err := r.store.RemoveDuplicates(ctx, userID)
	if err != nil {
		r.logger.Error("remove duplicates failed", zap.String("userID", userID), zap.Error(err))
		return textReply(render.RequestFailedText())
	}
	r.logger.Info("duplicates removed", zap.String("userID", userID), zap.Int("count", removed))
	return textReply(render.DuplicatesRemovedText())
}

func (r *Router) handleStats(ctx context.Context, userID string) []domain.Message {
	cards, err := r.store.GetAll(ctx, userID)
	if err != nil {
		r.logger.Error("stats fetch failed", zap.String("userID", userID), zap.Error(err))
		return textReply(render.RequestFailedText())
	}
	stats := computeStats(cards, timeNow())
	return textReply(render.StatsText(stats.Total, stats.ThisMonth, stats.TopCompany))
}

func (r *Router) handleSmartQuery(ctx context.Context, userID, question string) []domain.Message {
	cards, err := r.store.GetAll(ctx, userID)
	if err != nil {
		r.logger.Error("query fetch failed", zap.String("userID", userID), zap.Error(err))
		return textReply(render.QueryFailedText())
	}
	if len(cards) == 0 {
		return textReply(render.NoCardsText())
	}

	matches, err := r.query.Query(ctx, question, cards)
	if err != nil {
		r.logger.Error("smart query failed", zap.String("userID", userID), zap.Error(err))
		return textReply(render.QueryFailedText())
	}
	if len(matches) > maxQueryResults {
		matches = matches[:maxQueryResults]
	}

	replies := make([]domain.Message, 0, len(matches))
	for _, m := range matches {
		replies = append(replies, render.NamecardFlex(m.Card, m.ID))
	}
	if len(replies) == 0 {
		return textReply(render.QueryNoMatchText())
	}
	return replies
}

func (r *Router) handleImage(ctx context.Context, ev domain.Event) []domain.Message {
	data, mimeType, err := r.contents.GetMessageContent(ctx, ev.MessageID)
	if err != nil {
		r.logger.Error("fetch image content failed",
			zap.String("messageID", ev.MessageID), zap.Error(err))
		return textReply(render.RequestFailedText())
	}

	card, err := r.extractor.Extract(ctx, data, mimeType)
	if err != nil {
		var ucErr *Error
		if errors.As(err, &ucErr) && ucErr.Code == ErrorBadModelOutput {
			r.logger.Warn("card extraction returned unusable output", zap.Error(err))
			return textReply(render.ExtractFailedText(ucErr.Diagnostic))
		}
		r.logger.Error("card extraction failed", zap.Error(err))
		return textReply(render.RequestFailedText())
	}

	// Best-effort duplicate check by email before insertion. Races can still
	// produce duplicates; the "remove" command cleans those up.
	if card.Email != "" {
		existingID, found, err := r.store.FindByEmail(ctx, ev.UserID, card.Email)
		if err != nil {
			r.logger.Error("duplicate check failed", zap.String("userID", ev.UserID), zap.Error(err))
		} else if found {
			existing, ok, err := r.store.Get(ctx, ev.UserID, existingID)
			if err == nil && ok {
				return []domain.Message{
					domain.NewTextMessage(render.CardExistsText()),
					render.NamecardFlex(existing, existingID),
				}
			}
			if err != nil {
				r.logger.Error("fetch existing card failed", zap.String("cardID", existingID), zap.Error(err))
			}
			return textReply(render.CardExistsText())
		}
	}

	card.CreatedAt = timeNow().UTC().Format(time.RFC3339)
	cardID, err := r.store.Add(ctx, ev.UserID, card)
	if err != nil {
		r.logger.Error("store card failed", zap.String("userID", ev.UserID), zap.Error(err))
		return textReply(render.CardSaveFailedText())
	}
	return []domain.Message{
		render.NamecardFlex(card, cardID),
		domain.NewTextMessage(render.CardSavedText()),
	}
}

func (r *Router) handlePostback(ctx context.Context, ev domain.Event) []domain.Message {
	pb := ev.Postback
	card, found, err := r.store.Get(ctx, ev.UserID, pb.CardID)
	if err != nil {
		r.logger.Error("fetch card for postback failed",
			zap.String("cardID", pb.CardID), zap.Error(err))
		return textReply(render.CardNotFoundText())
	}
	if !found {
		return textReply(render.CardNotFoundText())
	}
	cardName := card.Name
	if cardName == "" {
		cardName = "這位聯絡人"
	}

	switch pb.Action {
	case domain.ActionAddMemo:
		r.states.Set(ev.UserID, ConvState{Pending: PendingMemo, CardID: pb.CardID})
		return textReply(render.AskForMemoText(cardName))

	case domain.ActionEditCard:
		return []domain.Message{render.EditOptionsFlex(pb.CardID, cardName)}

	case domain.ActionEditField:
		label, ok := domain.FieldLabels[pb.Field]
		if !ok {
			label = "資料"
		}
		r.states.Set(ev.UserID, ConvState{Pending: PendingFieldEdit, CardID: pb.CardID, Field: pb.Field})
		return textReply(render.AskForFieldText(cardName, label))

	case domain.ActionDownloadContact:
		return r.handleDownloadContact(ctx, ev.UserID, pb.CardID, card, cardName)

	default:
		r.logger.Warn("unknown postback action", zap.String("action", string(pb.Action)))
		return nil
	}
}

func (r *Router) handleDownloadContact(ctx context.Context, userID, cardID string, card domain.Card, cardName string) []domain.Message {
	png, err := vcard.EncodePNG(card)
	if err != nil {
		r.logger.Error("encode contact qr failed", zap.String("cardID", cardID), zap.Error(err))
		return textReply(render.QRCodeFailedText())
	}

	url, err := r.uploader.Upload(ctx, userID, cardID, png)
	if err != nil {
		r.logger.Error("upload contact qr failed", zap.String("cardID", cardID), zap.Error(err))
		return textReply(render.QRCodeFailedText())
	}

	return []domain.Message{
		domain.NewImageMessage(url),
		domain.NewTextMessage(render.QRCodeUsageText(cardName)),
	}
}

func textReply(text string) []domain.Message {
	return []domain.Message{domain.NewTextMessage(text)}
}

var timeNow = time.Now
