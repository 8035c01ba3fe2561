package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// EventCollection is the MongoDB collection holding security audit events.
const EventCollection = "security_audit_events"

const duplicateKeyCode = 11000

// mongoEvent is the stored document shape. The UUID is kept as its string form so
// documents stay readable from the mongo shell.
type mongoEvent struct {
	ID           string         `bson:"_id"`
	EventType    string         `bson:"event_type"`
	Category     string         `bson:"category"`
	UserID       string         `bson:"user_id,omitempty"`
	UserEmail    string         `bson:"user_email,omitempty"`
	IPAddress    string         `bson:"ip_address,omitempty"`
	UserAgent    string         `bson:"user_agent,omitempty"`
	SessionID    string         `bson:"session_id,omitempty"`
	RequestID    string         `bson:"request_id,omitempty"`
	ResourceID   string         `bson:"resource_id,omitempty"`
	ResourceType string         `bson:"resource_type,omitempty"`
	Success      bool           `bson:"success"`
	RiskLevel    string         `bson:"risk_level"`
	ErrorMessage string         `bson:"error_message,omitempty"`
	Details      map[string]any `bson:"details,omitempty"`
	Metadata     map[string]any `bson:"metadata,omitempty"`
	CreatedAt    time.Time      `bson:"created_at"`
}

func toMongoEvent(event *auditDomain.SecurityAuditEvent) mongoEvent {
	return mongoEvent{
		ID:           event.ID.String(),
		EventType:    string(event.EventType),
		Category:     string(event.Category),
		UserID:       event.Context.UserID,
		UserEmail:    event.Context.UserEmail,
		IPAddress:    event.Context.IPAddress,
		UserAgent:    event.Context.UserAgent,
		SessionID:    event.Context.SessionID,
		RequestID:    event.Context.RequestID,
		ResourceID:   event.ResourceID,
		ResourceType: event.ResourceType,
		Success:      event.Success,
		RiskLevel:    string(event.RiskLevel),
		ErrorMessage: event.ErrorMessage,
		Details:      storableMap(event.Details),
		Metadata:     storableMap(event.Metadata),
		CreatedAt:    event.CreatedAt,
	}
}

// storableMap returns m, or an encoding_error entry when m cannot be encoded as BSON.
func storableMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	if _, err := bson.Marshal(m); err != nil {
		return map[string]any{encodingErrorKey: err.Error()}
	}
	return m
}

// onlyDuplicateKeys reports whether err is a bulk write failure caused only by
// documents whose _id already exists.
func onlyDuplicateKeys(err error) bool {
	var bulkErr mongo.BulkWriteException
	if !apperrors.As(err, &bulkErr) {
		return false
	}
	if bulkErr.WriteConcernError != nil || len(bulkErr.WriteErrors) == 0 {
		return false
	}
	for _, writeErr := range bulkErr.WriteErrors {
		if writeErr.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}

func (d mongoEvent) toDomain() (*auditDomain.SecurityAuditEvent, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse security audit event id")
	}
	return &auditDomain.SecurityAuditEvent{
		ID:        id,
		EventType: auditDomain.EventType(d.EventType),
		Category:  auditDomain.Category(d.Category),
		Context: auditDomain.EventContext{
			UserID:    d.UserID,
			UserEmail: d.UserEmail,
			IPAddress: d.IPAddress,
			UserAgent: d.UserAgent,
			SessionID: d.SessionID,
			RequestID: d.RequestID,
		},
		ResourceID:   d.ResourceID,
		ResourceType: d.ResourceType,
		Success:      d.Success,
		RiskLevel:    auditDomain.RiskLevel(d.RiskLevel),
		ErrorMessage: d.ErrorMessage,
		Details:      d.Details,
		Metadata:     d.Metadata,
		CreatedAt:    d.CreatedAt.UTC(),
	}, nil
}

// MongoEventRepository stores security audit events in a MongoDB collection.
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a repository over db's security_audit_events collection.
func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{collection: db.Collection(EventCollection)}
}

// EnsureIndexes creates the indexes used by List and DeleteOlderThan.
func (r *MongoEventRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("event_type_time_idx"),
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return apperrors.Wrap(err, "failed to create security audit event indexes")
	}
	return nil
}

// CreateBatch inserts events with an unordered InsertMany. Events already stored
// by an earlier, partially failed attempt are skipped.
func (r *MongoEventRepository) CreateBatch(ctx context.Context, events []*auditDomain.SecurityAuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]any, 0, len(events))
	for _, event := range events {
		docs = append(docs, toMongoEvent(event))
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicateKeys(err) {
		return apperrors.Wrap(err, "failed to create security audit events")
	}
	return nil
}

// List retrieves events ordered by creation time descending (newest first) with pagination.
func (r *MongoEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	opts := options.Find()
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	opts.SetSkip(int64(offset))
	opts.SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security audit events")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	events := make([]*auditDomain.SecurityAuditEvent, 0)
	for cursor.Next(ctx) {
		var doc mongoEvent
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode security audit event")
		}
		event, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := cursor.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate security audit events")
	}
	return events, nil
}

// DeleteOlderThan removes events created before olderThan. When dryRun is true,
// only the matching documents are counted.
func (r *MongoEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	filter := bson.M{"created_at": bson.M{"$lt": olderThan}}

	if dryRun {
		count, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count security audit events")
		}
		return count, nil
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security audit events")
	}
	return result.DeletedCount, nil
}
