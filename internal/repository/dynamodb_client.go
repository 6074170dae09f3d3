package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"namecard-agent/internal/domain"
)

const (
	pkPrefixUser = "USER#"
	skPrefixCard = "CARD#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client wraps a DynamoDB single table of per-user contact records. Records
// live under PK "USER#<user_id>", SK "CARD#<card_id>", one attribute per
// contact field.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func userPK(userID string) string {
	return pkPrefixUser + userID
}

func cardSK(cardID string) string {
	return skPrefixCard + cardID
}

// updatableFields are the attributes UpdateField may rewrite. Memo has its own
// operation but shares the same write path.
var updatableFields = map[string]bool{
	"name": true, "title": true, "company": true,
	"address": true, "phone": true, "email": true, "memo": true,
}

// GetAll returns every card a user has stored, keyed by card identifier.
// A full query per call is acceptable: per-user record counts stay in the
// tens to low hundreds.
func (c *Client) GetAll(ctx context.Context, userID string) (map[string]domain.Card, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: userPK(userID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixCard},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetAll query: %w", err)
	}

	cards := make(map[string]domain.Card, len(out.Items))
	for _, item := range out.Items {
		cardID, card, err := itemToCard(item)
		if err != nil {
			return nil, fmt.Errorf("repository: GetAll unmarshal: %w", err)
		}
		cards[cardID] = card
	}
	return cards, nil
}

// Get fetches a single card. The second return value reports whether the card
// exists.
func (c *Client) Get(ctx context.Context, userID, cardID string) (domain.Card, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: cardSK(cardID)},
		},
	})
	if err != nil {
		return domain.Card{}, false, fmt.Errorf("repository: Get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Card{}, false, nil
	}

	_, card, err := itemToCard(out.Item)
	if err != nil {
		return domain.Card{}, false, fmt.Errorf("repository: Get unmarshal: %w", err)
	}
	return card, true, nil
}

// Add stores a new card and returns its assigned identifier.
func (c *Client) Add(ctx context.Context, userID string, card domain.Card) (string, error) {
	cardID := newCardID()
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                cardItem(userID, cardID, card),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return "", fmt.Errorf("repository: Add: %w", err)
	}
	return cardID, nil
}

// UpdateMemo rewrites the memo of an existing card.
func (c *Client) UpdateMemo(ctx context.Context, userID, cardID, memo string) error {
	if err := c.updateAttribute(ctx, userID, cardID, "memo", memo); err != nil {
		return fmt.Errorf("repository: UpdateMemo: %w", err)
	}
	return nil
}

// UpdateField rewrites one contact field of an existing card.
func (c *Client) UpdateField(ctx context.Context, userID, cardID, field, value string) error {
	if !updatableFields[field] {
		return fmt.Errorf("repository: UpdateField: unknown field %q", field)
	}
	if err := c.updateAttribute(ctx, userID, cardID, field, value); err != nil {
		return fmt.Errorf("repository: UpdateField %s: %w", field, err)
	}
	return nil
}

func (c *Client) updateAttribute(ctx context.Context, userID, cardID, attr, value string) error {
	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: cardSK(cardID)},
		},
		UpdateExpression:          aws.String("SET #attr = :value"),
		ExpressionAttributeNames:  map[string]string{"#attr": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":value": &types.AttributeValueMemberS{Value: value}},
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	return err
}

// Delete removes a card.
func (c *Client) Delete(ctx context.Context, userID, cardID string) error {
	_, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: cardSK(cardID)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Delete: %w", err)
	}
	return nil
}

// FindByEmail scans the user's cards for a matching email and returns the
// first-created card's identifier. The found flag is false when no card
// matches.
func (c *Client) FindByEmail(ctx context.Context, userID, email string) (string, bool, error) {
	if email == "" {
		return "", false, nil
	}
	cards, err := c.GetAll(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("repository: FindByEmail: %w", err)
	}
	for _, entry := range sortByCreation(cards) {
		if entry.card.Email == email {
			return entry.cardID, true, nil
		}
	}
	return "", false, nil
}

// RemoveDuplicates deletes cards whose email already appeared on an earlier
// created card, returning how many were removed. The first-created identifier
// per email is kept.
func (c *Client) RemoveDuplicates(ctx context.Context, userID string) (int, error) {
	cards, err := c.GetAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("repository: RemoveDuplicates: %w", err)
	}

	seen := make(map[string]bool)
	removed := 0
	for _, entry := range sortByCreation(cards) {
		email := entry.card.Email
		if email == "" {
			continue
		}
		if !seen[email] {
			seen[email] = true
			continue
		}
		if err := c.Delete(ctx, userID, entry.cardID); err != nil {
			return removed, fmt.Errorf("repository: RemoveDuplicates delete %s: %w", entry.cardID, err)
		}
		removed++
	}
	return removed, nil
}

type cardEntry struct {
	cardID string
	card   domain.Card
}

// sortByCreation orders cards oldest-first, identifier as tie-breaker, so
// dedup and lookup both keep the first-created record deterministic.
func sortByCreation(cards map[string]domain.Card) []cardEntry {
	entries := make([]cardEntry, 0, len(cards))
	for id, card := range cards {
		entries = append(entries, cardEntry{cardID: id, card: card})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].card.CreatedAt != entries[j].card.CreatedAt {
			return entries[i].card.CreatedAt < entries[j].card.CreatedAt
		}
		return entries[i].cardID < entries[j].cardID
	})
	return entries
}

func cardItem(userID, cardID string, card domain.Card) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":     &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK":     &types.AttributeValueMemberS{Value: cardSK(cardID)},
		"cardId": &types.AttributeValueMemberS{Value: cardID},
	}
	for attr, value := range map[string]string{
		"name":      card.Name,
		"title":     card.Title,
		"company":   card.Company,
		"address":   card.Address,
		"phone":     card.Phone,
		"email":     card.Email,
		"memo":      card.Memo,
		"createdAt": card.CreatedAt,
	} {
		if value != "" {
			item[attr] = &types.AttributeValueMemberS{Value: value}
		}
	}
	return item
}

func itemToCard(item map[string]types.AttributeValue) (string, domain.Card, error) {
	sk, err := strAttr(item, "SK")
	if err != nil {
		return "", domain.Card{}, err
	}
	cardID := strings.TrimPrefix(sk, skPrefixCard)
	if cardID == sk {
		return "", domain.Card{}, fmt.Errorf("repository: unexpected sort key %q", sk)
	}

	return cardID, domain.Card{
		Name:      optStrAttr(item, "name"),
		Title:     optStrAttr(item, "title"),
		Company:   optStrAttr(item, "company"),
		Address:   optStrAttr(item, "address"),
		Phone:     optStrAttr(item, "phone"),
		Email:     optStrAttr(item, "email"),
		Memo:      optStrAttr(item, "memo"),
		CreatedAt: optStrAttr(item, "createdAt"),
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func optStrAttr(item map[string]types.AttributeValue, key string) string {
	s, ok := item[key].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return s.Value
}

var newCardID = func() string {
	return uuid.NewString()
}
