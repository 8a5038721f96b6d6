package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions under "sess:<id>" and flashes under
// "flash:<id>", both bounded by the session TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessKey(sid string) string  { return "sess:" + sid }
func flashKey(sid string) string { return "flash:" + sid }

func (s *RedisStore) Create(ctx context.Context, userID uint64) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessKey(sid), strconv.FormatUint(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *RedisStore) Get(ctx context.Context, sid string) (uint64, error) {
	v, err := s.rdb.Get(ctx, sessKey(sid)).Result()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	// Sliding expiry: activity keeps the session alive.
	_ = s.rdb.Expire(ctx, sessKey(sid), s.ttl).Err()
	return id, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessKey(sid), flashKey(sid)).Err()
}

func (s *RedisStore) AddFlash(ctx context.Context, sid string, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, flashKey(sid), b).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, flashKey(sid), s.ttl).Err()
}

func (s *RedisStore) PopFlashes(ctx context.Context, sid string) ([]Flash, error) {
	pipe := s.rdb.TxPipeline()
	get := pipe.LRange(ctx, flashKey(sid), 0, -1)
	pipe.Del(ctx, flashKey(sid))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	raw := get.Val()
	flashes := make([]Flash, 0, len(raw))
	for _, r := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(r), &f); err == nil {
			flashes = append(flashes, f)
		}
	}
	return flashes, nil
}
