package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// DefaultKeyPrefix prefixes the per-user hash key.
const DefaultKeyPrefix = "clinic:"

// RedisStore keeps each account's snapshot in a hash whose fields are the
// four parts as JSON.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *log.Logger
}

// NewRedisStore returns a RedisStore on client. If logger is nil, a default
// logger writing to stderr is used.
func NewRedisStore(client *redis.Client, logger *log.Logger) *RedisStore {
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	return &RedisStore{client: client, prefix: DefaultKeyPrefix, logger: logger}
}

func (r *RedisStore) key(userID string) string { return r.prefix + userID }

// Load returns the user's record, or nil if the hash does not exist.
func (r *RedisStore) Load(ctx context.Context, userID string) (*models.Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", r.key(userID), err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	if _, ok := fields[FieldContent1]; !ok {
		if legacy, ok := fields[FieldLegacy]; ok {
			r.logger.Printf("Upgrading legacy single-field record for %s", userID)
			snap := decodeJSONPart[models.Snapshot](r.logger, FieldLegacy, []byte(legacy))
			if snap.Settings == (models.Settings{}) {
				snap.Settings = models.DefaultSettings()
			}
			return &snap, nil
		}
	}

	parts := Parts{
		Content1: decodeJSONPart[Content1](r.logger, FieldContent1, []byte(fields[FieldContent1])),
		Content2: decodeJSONPart[Content2](r.logger, FieldContent2, []byte(fields[FieldContent2])),
		Content3: decodeJSONPart[Content3](r.logger, FieldContent3, []byte(fields[FieldContent3])),
		Content4: decodeJSONPart[Content4](r.logger, FieldContent4, []byte(fields[FieldContent4])),
	}
	return parts.Assemble(), nil
}

// Save writes all four parts in one transaction and removes the legacy field.
func (r *RedisStore) Save(ctx context.Context, userID string, snap *models.Snapshot) error {
	parts := Partition(snap)
	values := make(map[string]any, 4)
	for field, part := range map[string]any{
		FieldContent1: parts.Content1,
		FieldContent2: parts.Content2,
		FieldContent3: parts.Content3,
		FieldContent4: parts.Content4,
	} {
		data, err := json.Marshal(part)
		if err != nil {
			return fmt.Errorf("encode %s: %w", field, err)
		}
		values[field] = data
	}

	key := r.key(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		pipe.HDel(ctx, key, FieldLegacy)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Ping checks the server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
