// Package line is a focused client for the LINE Messaging API: webhook
// signature verification and event parsing on the way in, reply and
// message-content calls on the way out.
package line

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"namecard-agent/internal/domain"
)

const maxMessagesPerReply = 5

// ErrInvalidSignature is returned when a webhook body does not match its
// X-Line-Signature header.
var ErrInvalidSignature = errors.New("line: invalid webhook signature")

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("line: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls the LINE Messaging API with a channel access token and
// verifies webhooks with the channel secret.
type Client struct {
	baseURL     string
	dataBaseURL string
	httpClient  *http.Client

	channelSecret string
	channelToken  string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithDataBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.dataBaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client for the given channel credentials.
func NewClient(channelSecret, channelToken string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(channelSecret) == "" {
		return nil, errors.New("line: channel secret must not be empty")
	}
	if strings.TrimSpace(channelToken) == "" {
		return nil, errors.New("line: channel access token must not be empty")
	}
	c := &Client{
		baseURL:       "https://api.line.me",
		dataBaseURL:   "https://api-data.line.me",
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		channelSecret: channelSecret,
		channelToken:  channelToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateSignature reports whether signature is the base64 HMAC-SHA256 of
// body under the channel secret.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}

// webhookBody is the wire shape of an inbound event batch.
type webhookBody struct {
	Destination string         `json:"destination"`
	Events      []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		Type   string `json:"type"`
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}

// ParseWebhook verifies the signature and decodes the batch into domain
// events. Event types outside text/image/postback are skipped.
func (c *Client) ParseWebhook(body []byte, signature string) ([]domain.Event, error) {
	if !c.ValidateSignature(body, signature) {
		return nil, ErrInvalidSignature
	}

	var payload webhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("line: decode webhook body: %w", err)
	}

	events := make([]domain.Event, 0, len(payload.Events))
	for _, we := range payload.Events {
		ev, ok := toDomainEvent(we)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func toDomainEvent(we webhookEvent) (domain.Event, bool) {
	base := domain.Event{
		UserID:     we.Source.UserID,
		ReplyToken: we.ReplyToken,
	}
	switch we.Type {
	case "message":
		switch we.Message.Type {
		case "text":
			base.Kind = domain.EventText
			base.Text = we.Message.Text
			return base, true
		case "image":
			base.Kind = domain.EventImage
			base.MessageID = we.Message.ID
			return base, true
		}
	case "postback":
		base.Kind = domain.EventPostback
		base.Postback = parsePostbackData(we.Postback.Data)
		return base, true
	}
	return domain.Event{}, false
}

// parsePostbackData decodes the query-string payload of a button press.
func parsePostbackData(data string) domain.Postback {
	values, err := url.ParseQuery(data)
	if err != nil {
		return domain.Postback{}
	}
	return domain.Postback{
		Action: domain.Action(values.Get("action")),
		CardID: values.Get("card_id"),
		Field:  values.Get("field"),
	}
}

// replyRequest is the wire shape of the reply endpoint.
type replyRequest struct {
	ReplyToken string           `json:"replyToken"`
	Messages   []map[string]any `json:"messages"`
}

// Reply sends up to five messages against a reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []domain.Message) error {
	if replyToken == "" {
		return errors.New("line: reply token must not be empty")
	}
	if len(messages) == 0 {
		return errors.New("line: no messages to send")
	}
	if len(messages) > maxMessagesPerReply {
		messages = messages[:maxMessagesPerReply]
	}

	wire := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		wm, err := toWireMessage(m)
		if err != nil {
			return err
		}
		wire = append(wire, wm)
	}

	body, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: wire})
	if err != nil {
		return fmt.Errorf("line: marshal reply request: %w", err)
	}

	replyURL := c.baseURL + "/v2/bot/message/reply"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, replyURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	if _, err := c.doRequest(req, replyURL); err != nil {
		return fmt.Errorf("line: reply request failed: %w", err)
	}
	return nil
}

func toWireMessage(m domain.Message) (map[string]any, error) {
	switch m.Type {
	case domain.MessageText:
		return map[string]any{"type": "text", "text": m.Text}, nil
	case domain.MessageFlex:
		return map[string]any{"type": "flex", "altText": m.AltText, "contents": m.Contents}, nil
	case domain.MessageImage:
		return map[string]any{
			"type":               "image",
			"originalContentUrl": m.OriginalContentURL,
			"previewImageUrl":    m.PreviewImageURL,
		}, nil
	default:
		return nil, fmt.Errorf("line: unknown message type %q", m.Type)
	}
}

// GetMessageContent downloads the binary content of an inbound message and
// returns it with its MIME type.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	if messageID == "" {
		return nil, "", errors.New("line: message id must not be empty")
	}

	contentURL := fmt.Sprintf("%s/v2/bot/message/%s/content", c.dataBaseURL, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("line: create content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("line: content request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, "", &HTTPStatusError{StatusCode: res.StatusCode, URL: contentURL, Body: string(buf)}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, 20<<20))
	if err != nil {
		return nil, "", fmt.Errorf("line: read content body: %w", err)
	}

	mimeType := res.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return data, mimeType, nil
}

func (c *Client) doRequest(req *http.Request, requestURL string) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, URL: requestURL, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
