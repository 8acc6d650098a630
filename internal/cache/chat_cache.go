package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"quickgpt/internal/model"
)

// ChatListCache keeps each user's chat list in Redis. Writers mark the entry
// dirty before invalidating it so a reader racing with the write does not put
// the stale list back.
type ChatListCache struct {
	client         *redisv9.Client
	listTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewChatListCache(client *redisv9.Client, listTTL, dirtyMarkerTTL time.Duration) *ChatListCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ChatListCache{
		client:         client,
		listTTL:        listTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ChatListCache) GetChats(ctx context.Context, userID uint) ([]model.Chat, bool, error) {
	dirty, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	if dirty > 0 {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, c.listKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get chat list failed: %w", err)
	}

	var chats []model.Chat
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached chat list failed: %w", err)
	}
	return chats, true, nil
}

func (c *ChatListCache) SetChats(ctx context.Context, userID uint, chats []model.Chat) error {
	dirty, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	if dirty > 0 {
		return nil
	}

	payload, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("marshal chat list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(userID), payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set chat list failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached list and blocks repopulation for the dirty
// marker TTL.
func (c *ChatListCache) Invalidate(ctx context.Context, userID uint) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL)
	pipe.Del(ctx, c.listKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate chat list failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) listKey(userID uint) string {
	return fmt.Sprintf("chat:list:%d", userID)
}

func (c *ChatListCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("chat:list:dirty:%d", userID)
}
