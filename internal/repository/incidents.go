// Package repository stores failed-call diagnostics in DynamoDB. Sessions
// themselves are never persisted.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dzine-mind/internal/domain"
)

const (
	skPrefixIncident = "INCIDENT#"
	ttlDuration      = 30 * 24 * time.Hour
)

// dynamodbAPI is the subset of *dynamodb.Client used by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client is the incident log table.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func sessionPK(sessionID string) string {
	return "SESSION#" + sessionID
}

func incidentSK(ts time.Time) string {
	return skPrefixIncident + ts.UTC().Format(time.RFC3339Nano)
}

// RecordIncident writes one incident. Items expire after 30 days.
func (c *Client) RecordIncident(ctx context.Context, in domain.Incident) error {
	if strings.TrimSpace(in.SessionID) == "" {
		return errors.New("repository: RecordIncident: session id is required")
	}
	at := in.OccurredAt
	if at.IsZero() {
		at = c.now()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                incidentItem(in, at, at.Add(ttlDuration).Unix()),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordIncident: %w", err)
	}
	return nil
}

// ListIncidents returns up to limit incidents for a session, oldest first.
// A non-positive limit returns every stored incident.
func (c *Client) ListIncidents(ctx context.Context, sessionID string, limit int) ([]domain.Incident, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixIncident},
		},
		// Newest first so the limit keeps the most recent incidents.
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: ListIncidents query: %w", err)
	}

	incidents := make([]domain.Incident, 0, len(out.Items))
	for _, item := range out.Items {
		inc, err := itemToIncident(item)
		if err != nil {
			return nil, fmt.Errorf("repository: ListIncidents unmarshal: %w", err)
		}
		incidents = append(incidents, inc)
	}
	for i, j := 0, len(incidents)-1; i < j; i, j = i+1, j-1 {
		incidents[i], incidents[j] = incidents[j], incidents[i]
	}
	return incidents, nil
}

func incidentItem(in domain.Incident, at time.Time, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: sessionPK(in.SessionID)},
		"SK":         &types.AttributeValueMemberS{Value: incidentSK(at)},
		"sessionId":  &types.AttributeValueMemberS{Value: in.SessionID},
		"turnId":     &types.AttributeValueMemberS{Value: in.TurnID},
		"mode":       &types.AttributeValueMemberS{Value: string(in.Mode)},
		"code":       &types.AttributeValueMemberS{Value: in.Code},
		"cause":      &types.AttributeValueMemberS{Value: in.Cause},
		"occurredAt": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		"ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)},
	}
}

func itemToIncident(item map[string]types.AttributeValue) (domain.Incident, error) {
	sessionID, err := strAttr(item, "sessionId")
	if err != nil {
		return domain.Incident{}, err
	}
	code, err := strAttr(item, "code")
	if err != nil {
		return domain.Incident{}, err
	}
	raw, err := strAttr(item, "occurredAt")
	if err != nil {
		return domain.Incident{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("repository: parse attribute %q: %w", "occurredAt", err)
	}
	turnID, _ := strAttr(item, "turnId") // allow empty
	mode, _ := strAttr(item, "mode")
	cause, _ := strAttr(item, "cause")

	return domain.Incident{
		SessionID:  sessionID,
		TurnID:     turnID,
		Mode:       domain.Mode(mode),
		Code:       code,
		Cause:      cause,
		OccurredAt: at,
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
