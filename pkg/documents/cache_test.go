package documents

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*StatusCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStatusCache(client, time.Minute), mr
}

func TestStatusCacheStoresTerminalResponses(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	pages := 3
	preview := "some text"
	resp := &StatusResponse{
		ID:          7,
		Filename:    "report.pdf",
		Status:      StatusProcessed,
		PageCount:   &pages,
		TextPreview: &preview,
	}
	cache.Set(ctx, resp)

	got, ok := cache.Get(ctx, 7)
	if !ok {
		t.Fatal("expected a cache hit for a terminal response")
	}
	if got.Status != StatusProcessed || got.Filename != "report.pdf" {
		t.Fatalf("unexpected cached response: %+v", got)
	}
	if got.PageCount == nil || *got.PageCount != 3 {
		t.Fatalf("page count lost in the cache round trip: %v", got.PageCount)
	}
	if got.TextPreview == nil || *got.TextPreview != preview {
		t.Fatalf("preview lost in the cache round trip: %v", got.TextPreview)
	}
}

func TestStatusCacheIgnoresNonTerminalResponses(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	for _, status := range []string{StatusPending, StatusProcessing} {
		cache.Set(ctx, &StatusResponse{ID: 1, Status: status})
		if _, ok := cache.Get(ctx, 1); ok {
			t.Fatalf("status %q must not be cached", status)
		}
	}
}

func TestStatusCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	if _, ok := cache.Get(context.Background(), 99); ok {
		t.Fatal("expected a miss for an unknown id")
	}
}

func TestStatusCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, &StatusResponse{ID: 4, Status: StatusError})
	if _, ok := cache.Get(ctx, 4); !ok {
		t.Fatal("expected a hit before expiry")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := cache.Get(ctx, 4); ok {
		t.Fatal("entry should expire after the TTL")
	}
}

func TestNilStatusCacheIsPassThrough(t *testing.T) {
	var cache *StatusCache
	ctx := context.Background()

	cache.Set(ctx, &StatusResponse{ID: 1, Status: StatusProcessed})
	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("nil cache must never hit")
	}
}
