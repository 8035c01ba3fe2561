package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

func TestMongoEventDocument(t *testing.T) {
	event := newSampleEvent(t, auditDomain.EventAccessDenied, false)

	doc := toMongoEvent(event)
	assert.Equal(t, event.ID.String(), doc.ID)
	assert.Equal(t, "ACCESS_DENIED", doc.EventType)
	assert.Equal(t, "authorization", doc.Category)
	assert.Equal(t, "high", doc.RiskLevel)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded mongoEvent
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	got, err := decoded.toDomain()
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.Context, got.Context)
	assert.Equal(t, event.RiskLevel, got.RiskLevel)
	assert.Equal(t, "apiKey", got.Details["field"])
	assert.True(t, event.CreatedAt.Equal(got.CreatedAt))
}

func TestMongoEventDocument_InvalidID(t *testing.T) {
	_, err := mongoEvent{ID: "not-a-uuid"}.toDomain()
	assert.ErrorContains(t, err, "failed to parse security audit event id")
}

// TestMongoEventRepository_Integration runs against TEST_MONGO_URI when it is set.
func TestMongoEventRepository_Integration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	db := client.Database("credguard_test")
	require.NoError(t, db.Collection(EventCollection).Drop(ctx))

	repo := NewMongoEventRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	old := newSampleEvent(t, auditDomain.EventLoginFailed, false)
	old.CreatedAt = time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Millisecond)
	recent := newSampleEvent(t, auditDomain.EventLoginSuccess, true)
	recent.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.CreateBatch(ctx, []*auditDomain.SecurityAuditEvent{old, recent}))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	events, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, recent.ID, events[0].ID)

	count, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
