package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider decorates an EmbeddingProvider with a Redis lookaside cache
// keyed by a hash of (model task type, text). Query embeddings repeat a lot
// across a session, so a hit skips the provider round trip entirely.
//
// Cache failures are non-fatal: on any Redis error the call falls through to
// the inner provider.
type CachedProvider struct {
	inner  EmbeddingProvider
	client *redis.Client
	ttl    time.Duration
}

func NewCachedProvider(inner EmbeddingProvider, client *redis.Client, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := cacheKey(text, taskType)

	if raw, err := p.client.Get(ctx, key).Bytes(); err == nil {
		var cached EmbeddingResponse
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached.Embedding.Values) > 0 {
			return &cached, nil
		}
	}

	res, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		// Best effort; a failed SET must not fail the embedding call.
		_ = p.client.Set(ctx, key, raw, p.ttl).Err()
	}

	return res, nil
}
