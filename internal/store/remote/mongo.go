package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// CollectionUserData holds one record per account.
const CollectionUserData = "user_data"

// MongoStore keeps each account's snapshot in one document of the user_data
// collection, the four parts as embedded documents.
type MongoStore struct {
	db     *mongo.Database
	logger *log.Logger
}

// NewMongoStore returns a MongoStore on db. If logger is nil, a default logger
// writing to stderr is used.
func NewMongoStore(db *mongo.Database, logger *log.Logger) *MongoStore {
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	return &MongoStore{db: db, logger: logger}
}

// Load returns the user's newest record, or nil if there is none.
func (m *MongoStore) Load(ctx context.Context, userID string) (*models.Snapshot, error) {
	collection := m.db.Collection(CollectionUserData)
	opts := options.FindOne().SetSort(bson.D{{Key: "updated", Value: -1}})

	var raw bson.Raw
	err := collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user_data: %w", err)
	}
	return decodeRecord(m.logger, raw), nil
}

// Save upserts the user's record with the partitioned snapshot and drops the
// legacy single-field content if present.
func (m *MongoStore) Save(ctx context.Context, userID string, snap *models.Snapshot) error {
	parts := Partition(snap)
	update := bson.M{
		"$set": bson.M{
			"userId":       userID,
			FieldContent1: parts.Content1,
			FieldContent2: parts.Content2,
			FieldContent3: parts.Content3,
			FieldContent4: parts.Content4,
			"updated":     time.Now().UTC(),
		},
		"$unset": bson.M{FieldLegacy: ""},
	}
	collection := m.db.Collection(CollectionUserData)
	_, err := collection.UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert user_data: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique userId index.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionUserData).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user_data index: %w", err)
	}
	return nil
}

// decodeRecord reads a user_data document in either the partitioned or the
// legacy shape. Parts that cannot be read fall back to their defaults.
func decodeRecord(logger *log.Logger, raw bson.Raw) *models.Snapshot {
	_, errNew := raw.LookupErr(FieldContent1)
	legacy, errLegacy := raw.LookupErr(FieldLegacy)
	if errNew != nil && errLegacy == nil {
		logger.Printf("Upgrading legacy single-field record")
		snap := decodeBSONPart[models.Snapshot](logger, FieldLegacy, legacy)
		if snap.Settings == (models.Settings{}) {
			snap.Settings = models.DefaultSettings()
		}
		return &snap
	}

	parts := Parts{
		Content1: decodeBSONPart[Content1](logger, FieldContent1, raw.Lookup(FieldContent1)),
		Content2: decodeBSONPart[Content2](logger, FieldContent2, raw.Lookup(FieldContent2)),
		Content3: decodeBSONPart[Content3](logger, FieldContent3, raw.Lookup(FieldContent3)),
		Content4: decodeBSONPart[Content4](logger, FieldContent4, raw.Lookup(FieldContent4)),
	}
	return parts.Assemble()
}

// decodeBSONPart accepts a part stored either as an embedded document or as a
// JSON string.
func decodeBSONPart[T any](logger *log.Logger, field string, v bson.RawValue) T {
	var out T
	switch v.Type {
	case bsontype.EmbeddedDocument:
		if err := v.Unmarshal(&out); err != nil {
			logger.Printf("WARNING: unreadable %s, using defaults: %v", field, err)
			var zero T
			return zero
		}
		return out
	case bsontype.String:
		s, _ := v.StringValueOK()
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			logger.Printf("WARNING: unreadable %s, using defaults: %v", field, err)
			var zero T
			return zero
		}
		return out
	case 0, bsontype.Null, bsontype.Undefined:
		return out
	default:
		logger.Printf("WARNING: unexpected %s type %s, using defaults", field, v.Type)
		return out
	}
}
