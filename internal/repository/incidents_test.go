package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"dzine-mind/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	queryOut     *dynamodb.QueryOutput
	queryErr     error
	lastPutInput *dynamodb.PutItemInput
	lastQueryIn  *dynamodb.QueryInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func makeIncidentItem(sessionID, code, at string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK":         &types.AttributeValueMemberS{Value: skPrefixIncident + at},
		"sessionId":  &types.AttributeValueMemberS{Value: sessionID},
		"turnId":     &types.AttributeValueMemberS{Value: "turn-" + code},
		"mode":       &types.AttributeValueMemberS{Value: "critic"},
		"code":       &types.AttributeValueMemberS{Value: code},
		"cause":      &types.AttributeValueMemberS{Value: "boom"},
		"occurredAt": &types.AttributeValueMemberS{Value: at},
	}
}

func strVal(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q", key)
	return v.Value
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "t")
	require.ErrorContains(t, err, "api must not be nil")

	_, err = New(&fakeDynamo{}, "  ")
	require.ErrorContains(t, err, "table name must not be empty")
}

func TestRecordIncident_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	at := time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)

	err := c.RecordIncident(context.Background(), domain.Incident{
		SessionID:  "s1",
		TurnID:     "t1",
		Mode:       domain.ModeTrends,
		Code:       "REMOTE_FAILURE",
		Cause:      "gemini: generate content: 503",
		OccurredAt: at,
	})
	require.NoError(t, err)

	in := db.lastPutInput
	require.NotNil(t, in)
	require.Equal(t, "test-table", *in.TableName)
	require.Contains(t, *in.ConditionExpression, "attribute_not_exists")
	require.Equal(t, "SESSION#s1", strVal(t, in.Item, "PK"))
	require.Equal(t, "INCIDENT#2026-03-01T12:00:00.000000005Z", strVal(t, in.Item, "SK"))
	require.Equal(t, "t1", strVal(t, in.Item, "turnId"))
	require.Equal(t, "trends", strVal(t, in.Item, "mode"))
	require.Equal(t, "REMOTE_FAILURE", strVal(t, in.Item, "code"))
	require.Equal(t, "gemini: generate content: 503", strVal(t, in.Item, "cause"))

	ttl, ok := in.Item["ttl"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	require.Equal(t, strconv.FormatInt(at.Add(30*24*time.Hour).Unix(), 10), ttl.Value)
}

func TestRecordIncident_DefaultsTimestamp(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	require.NoError(t, c.RecordIncident(context.Background(), domain.Incident{SessionID: "s1", Code: "REMOTE_FAILURE"}))
	require.Equal(t, "INCIDENT#2026-01-02T03:04:05Z", strVal(t, db.lastPutInput.Item, "SK"))
}

func TestRecordIncident_RequiresSession(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.RecordIncident(context.Background(), domain.Incident{Code: "REMOTE_FAILURE"})
	require.ErrorContains(t, err, "session id is required")
	require.Nil(t, db.lastPutInput)
}

func TestRecordIncident_PutError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("throttled")}
	c := mustNewClient(t, db)
	err := c.RecordIncident(context.Background(), domain.Incident{SessionID: "s1"})
	require.ErrorContains(t, err, "RecordIncident")
	require.ErrorContains(t, err, "throttled")
}

func TestListIncidents_ReturnsChronological(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		makeIncidentItem("s1", "B", "2026-03-01T12:00:02Z"),
		makeIncidentItem("s1", "A", "2026-03-01T12:00:01Z"),
	}}}
	c := mustNewClient(t, db)

	got, err := c.ListIncidents(context.Background(), "s1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "A", got[0].Code)
	require.Equal(t, "B", got[1].Code)
	require.Equal(t, domain.ModeCritic, got[0].Mode)
	require.Equal(t, "turn-A", got[0].TurnID)
	require.True(t, got[0].OccurredAt.Before(got[1].OccurredAt))

	q := db.lastQueryIn
	require.NotNil(t, q)
	require.False(t, *q.ScanIndexForward)
	require.Equal(t, int32(2), *q.Limit)
	pk, ok := q.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	require.Equal(t, "SESSION#s1", pk.Value)
}

func TestListIncidents_NoLimit(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	got, err := c.ListIncidents(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Empty(t, got)
	require.Nil(t, db.lastQueryIn.Limit)
}

func TestListIncidents_Errors(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, err := c.ListIncidents(context.Background(), "s1", 5)
	require.ErrorContains(t, err, "ListIncidents query")

	bad := makeIncidentItem("s1", "A", "not-a-time")
	db = &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{bad}}}
	c = mustNewClient(t, db)
	_, err = c.ListIncidents(context.Background(), "s1", 5)
	require.ErrorContains(t, err, "occurredAt")

	missing := makeIncidentItem("s1", "A", "2026-03-01T12:00:01Z")
	delete(missing, "code")
	db = &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{missing}}}
	c = mustNewClient(t, db)
	_, err = c.ListIncidents(context.Background(), "s1", 5)
	require.ErrorContains(t, err, `missing attribute "code"`)
}
