package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docstream-ai/docstream/pkg/common/logger"
)

// StatusCache memoizes status responses for documents in a terminal state.
// Terminal records never mutate again, so entries need no invalidation; the
// TTL only bounds memory. A nil cache or an unreachable Redis degrades to
// pass-through.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) Get(ctx context.Context, id int64) (*StatusResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var resp StatusResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		logger.Log.WithError(err).WithField("doc_id", id).Warn("discarding unreadable cache entry")
		return nil, false
	}
	return &resp, true
}

// Set stores a response if its status is terminal; anything else is ignored.
func (c *StatusCache) Set(ctx context.Context, resp *StatusResponse) {
	if c == nil || c.client == nil || !TerminalStatus(resp.Status) {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(resp.ID), payload, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("doc_id", resp.ID).Debug("status cache write failed")
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("documents:status:%d", id)
}
