package stats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore aggregates counters in Redis hashes: a cumulative
// "<prefix>:total" hash and, unless bucketing is disabled, one
// "<prefix>:minute:YYYYMMDDhhmm" hash per minute that expires after ttl.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	bucket bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. Surrounding colons are trimmed.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets the expiry of per-minute buckets. Zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// WithoutBuckets records only the cumulative hash.
func WithoutBuckets() RedisOption {
	return func(s *RedisStore) { s.bucket = false }
}

// NewRedisStore returns a RedisStore writing through rdb.
func NewRedisStore(rdb redis.Cmdable, opts ...RedisOption) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis client must not be nil")
	}

	s := &RedisStore{
		rdb:    rdb,
		prefix: "rategate:stats",
		ttl:    24 * time.Hour,
		bucket: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.prefix == "" {
		return nil, errors.New("redis key prefix must not be empty")
	}

	return s, nil
}

// Record implements Recorder.
func (s *RedisStore) Record(ctx context.Context, ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Outcome)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)

	if s.bucket {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record %s: %w", field, err)
	}

	return nil
}

// Totals reads the cumulative counters back.
func (s *RedisStore) Totals(ctx context.Context) (Counters, error) {
	raw, err := s.rdb.HGetAll(ctx, s.totalKey()).Result()
	if err != nil {
		return Counters{}, fmt.Errorf("redis read totals: %w", err)
	}

	var c Counters
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("parsing %s[%q]: %w", field, v, err)
		}
		c.add(Outcome(field), n)
	}

	return c, nil
}

func (s *RedisStore) totalKey() string {
	return s.prefix + ":total"
}
