package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"quickgpt/internal/model"
)

const (
	galleryKey      = "gallery:published"
	galleryDirtyKey = "gallery:published:dirty"
)

// GalleryCache holds the projected gallery for a short TTL. The gallery is a
// full scan over all chats, so it is served from cache between refreshes.
// Invalidate leaves a dirty marker like ChatListCache so a scan that started
// before the write cannot store its stale result.
type GalleryCache struct {
	client         *redisv9.Client
	ttl            time.Duration
	dirtyMarkerTTL time.Duration
}

func NewGalleryCache(client *redisv9.Client, ttl, dirtyMarkerTTL time.Duration) *GalleryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &GalleryCache{client: client, ttl: ttl, dirtyMarkerTTL: dirtyMarkerTTL}
}

func (c *GalleryCache) GetImages(ctx context.Context) ([]model.GalleryImage, bool, error) {
	dirty, err := c.client.Exists(ctx, galleryDirtyKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis check gallery dirty marker failed: %w", err)
	}
	if dirty > 0 {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, galleryKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get gallery failed: %w", err)
	}

	var images []model.GalleryImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached gallery failed: %w", err)
	}
	return images, true, nil
}

func (c *GalleryCache) SetImages(ctx context.Context, images []model.GalleryImage) error {
	dirty, err := c.client.Exists(ctx, galleryDirtyKey).Result()
	if err != nil {
		return fmt.Errorf("redis check gallery dirty marker failed: %w", err)
	}
	if dirty > 0 {
		return nil
	}

	payload, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal gallery cache failed: %w", err)
	}
	if err := c.client.Set(ctx, galleryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set gallery failed: %w", err)
	}
	return nil
}

func (c *GalleryCache) Invalidate(ctx context.Context) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, galleryDirtyKey, "1", c.dirtyMarkerTTL)
	pipe.Del(ctx, galleryKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete gallery failed: %w", err)
	}
	return nil
}
