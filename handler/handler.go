// Package handler exposes the webhook HTTP surface: signature-checked event
// batches in, reply calls out.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"namecard-agent/internal/domain"
	"namecard-agent/internal/integrations/line"
	"namecard-agent/internal/observability"
	"namecard-agent/internal/usecase"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookParser verifies and decodes an inbound event batch.
type WebhookParser interface {
	ParseWebhook(body []byte, signature string) ([]domain.Event, error)
}

// Replier delivers reply messages against a reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []domain.Message) error
}

// Handler serves the webhook endpoint. Events in one batch fan out
// concurrently; events for the same user are serialized by a per-user lock so
// one user's conversation stays ordered without blocking anyone else.
type Handler struct {
	parser  WebhookParser
	replier Replier
	router  *usecase.Router
	locks   *usecase.UserLocks
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewHandler creates a webhook handler.
func NewHandler(parser WebhookParser, replier Replier, router *usecase.Router, logger *zap.Logger, metrics *observability.Collector) (*Handler, error) {
	if parser == nil {
		return nil, errors.New("handler: webhook parser must not be nil")
	}
	if replier == nil {
		return nil, errors.New("handler: replier must not be nil")
	}
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		parser:  parser,
		replier: replier,
		router:  router,
		locks:   usecase.NewUserLocks(),
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Webhook handles the signed event batch POST. A bad signature is rejected
// with 400 before any processing; after that, each event is isolated so one
// failure never blocks replies to the others.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	events, err := h.parser.ParseWebhook(body, r.Header.Get("X-Line-Signature"))
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			h.logger.Warn("webhook signature rejected")
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		h.logger.Error("webhook parse failed", zap.Error(err))
		http.Error(w, "malformed webhook body", http.StatusBadRequest)
		return
	}

	// Plain errgroup, no shared cancellation: a failing event must not abort
	// its siblings, only be logged and counted.
	var g errgroup.Group
	for _, ev := range events {
		g.Go(func() error {
			return h.handleEvent(r.Context(), ev)
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Error("event batch finished with failures", zap.Error(err))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleEvent(ctx context.Context, ev domain.Event) error {
	if h.metrics != nil {
		h.metrics.EventsReceived.WithLabelValues(string(ev.Kind)).Inc()
	}

	if ev.UserID != "" {
		unlock := h.locks.Lock(ev.UserID)
		defer unlock()
	}

	messages := h.router.Handle(ctx, ev)
	if len(messages) == 0 {
		return nil
	}

	if err := h.replier.Reply(ctx, ev.ReplyToken, messages); err != nil {
		if h.metrics != nil {
			h.metrics.EventFailures.Inc()
		}
		h.logger.Error("reply delivery failed",
			zap.String("userID", ev.UserID), zap.String("kind", string(ev.Kind)), zap.Error(err))
		return fmt.Errorf("handler: reply for %s event: %w", ev.Kind, err)
	}
	if h.metrics != nil {
		h.metrics.RepliesSent.Inc()
	}
	return nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
