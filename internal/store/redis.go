package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"time"

	"timelock.keep/internal/models"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// activeSetKey holds the ids of all active records. Set membership is the
// source of truth for the Active flag; the per-id blob is written once at
// creation and never rewritten, so retired records remain as tombstones.
const activeSetKey = "records:active"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(options *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(options)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Create(ctx context.Context, rec *models.SecretRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, recordKey(rec.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	return r.client.SAdd(ctx, activeSetKey, rec.ID).Err()
}

func (r *RedisStore) FindActive(ctx context.Context, id string) (*models.SecretRecord, error) {
	active, err := r.client.SIsMember(ctx, activeSetKey, id).Result()
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrNotFound
	}

	data, err := r.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return decode(data)
}

func (r *RedisStore) ListActive(ctx context.Context) ([]*models.SecretRecord, error) {
	ids, err := r.client.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	recs := make([]*models.SecretRecord, 0, len(vals))
	for _, val := range vals {
		raw, ok := val.(string)
		if !ok {
			// id in the set without a blob, skip
			continue
		}
		rec, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// retireScript performs the conditional retirement in one round trip: the
// record blob must exist (otherwise the id never did), and removing the id
// from the active set reports whether this call made the transition.
var retireScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('SREM', KEYS[2], ARGV[1])
`)

func (r *RedisStore) Retire(ctx context.Context, id string) (bool, error) {
	res, err := retireScript.Run(ctx, r.client, []string{recordKey(id), activeSetKey}, id).Int()
	if err != nil {
		return false, err
	}

	switch res {
	case -1:
		return false, ErrNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Helpers

func recordKey(id string) string {
	return "record:" + id
}

func encode(rec *models.SecretRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*models.SecretRecord, error) {
	var rec models.SecretRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
