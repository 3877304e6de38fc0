package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "axiom:embedding:"

// RedisCachedProvider shares memoized embeddings between replicas. Redis
// faults never fail a lookup: the call falls through to the wrapped
// provider.
type RedisCachedProvider struct {
	next EmbeddingProvider
	rdb  redis.UniversalClient
	ttl  time.Duration
}

func NewRedisCachedProvider(next EmbeddingProvider, rdb redis.UniversalClient, ttl time.Duration) *RedisCachedProvider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisCachedProvider{next: next, rdb: rdb, ttl: ttl}
}

func (p *RedisCachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := redisKeyPrefix + cacheKey(text, taskType)

	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err == nil {
		if values, decodeErr := decodeVector(raw); decodeErr == nil {
			return NewResponse(values), nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	_ = p.rdb.Set(ctx, key, encodeVector(res.Embedding.Values), p.ttl).Err()
	return res, nil
}

// encodeVector packs float32s little-endian, 4 bytes each.
func encodeVector(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("cached embedding has invalid length %d", len(raw))
	}
	values := make([]float32, len(raw)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return values, nil
}

// NewRedisClient accepts a redis:// URL or a bare host:port.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}
