package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgpt/internal/cache"
	"quickgpt/internal/model"
	"quickgpt/internal/repository"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisv9.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestChatService_CreateListDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), nil, nil)
	ctx := context.Background()
	user := createUser(t, db, "ada", 0)

	first, err := svc.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChatName, first.Name)
	assert.Equal(t, "ada", first.UserName)
	second, err := svc.Create(ctx, user)
	require.NoError(t, err)

	chats, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	require.NoError(t, svc.Delete(ctx, user.ID, first.ID))
	chats, err = svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, second.ID, chats[0].ID)

	require.NoError(t, svc.Delete(ctx, user.ID, first.ID), "deleting twice still succeeds")
	assert.ErrorIs(t, svc.Delete(ctx, user.ID, 0), ErrInvalidInput)
}

func TestChatService_DeleteOthersChatIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), nil, nil)
	ctx := context.Background()
	owner := createUser(t, db, "owner", 0)
	other := createUser(t, db, "other", 0)
	chat := createChat(t, db, owner)

	require.NoError(t, svc.Delete(ctx, other.ID, chat.ID))

	chats, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestChatService_ListCacheInvalidatedOnWrite(t *testing.T) {
	db := newTestDB(t)
	srv, client := newTestRedis(t)
	listCache := cache.NewChatListCache(client, time.Minute, time.Second)
	svc := NewChatService(repository.NewChatRepository(db), listCache, nil)
	ctx := context.Background()
	user := createUser(t, db, "ada", 0)

	_, err := svc.Create(ctx, user)
	require.NoError(t, err)
	srv.FastForward(2 * time.Second)

	chats, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	_, hit, err := listCache.GetChats(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, hit)

	_, err = svc.Create(ctx, user)
	require.NoError(t, err)
	chats, err = svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}
