package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quickgpt/internal/generation"
	"quickgpt/internal/model"
	"quickgpt/internal/platform/sqlite"
	"quickgpt/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, credits int) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "hash", Credits: credits}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createChat(t *testing.T, db *gorm.DB, owner *model.User) *model.Chat {
	t.Helper()
	chat := &model.Chat{UserID: owner.ID, UserName: owner.Name, Name: model.DefaultChatName}
	require.NoError(t, repository.NewChatRepository(db).Create(context.Background(), chat))
	return chat
}

func balance(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	user, err := repository.NewUserRepository(db).GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.Credits
}

func chatMessages(t *testing.T, db *gorm.DB, chat *model.Chat) []model.Message {
	t.Helper()
	got, err := repository.NewChatRepository(db).GetByIDAndUserID(context.Background(), chat.ID, chat.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.Messages
}

// fakeGenerator answers every prompt with a fixed reply, or fails with err.
type fakeGenerator struct {
	mode generation.Mode
	cost int
	err  error

	mu    sync.Mutex
	calls int
}

func (g *fakeGenerator) Mode() generation.Mode { return g.mode }

func (g *fakeGenerator) Cost() int { return g.cost }

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (model.Message, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return model.Message{}, g.err
	}
	if g.mode == generation.ModeImage {
		return model.Message{
			Role:        model.RoleAssistant,
			Content:     "https://ik.example/" + req.Prompt + ".png",
			IsImage:     true,
			IsPublished: req.Publish,
		}, nil
	}
	return model.Message{Role: model.RoleAssistant, Content: "echo: " + req.Prompt}, nil
}

type fakePublisher struct {
	err error
	ids []string
}

func (p *fakePublisher) PublishCommit(_ context.Context, commitID string) error {
	if p.err != nil {
		return p.err
	}
	p.ids = append(p.ids, commitID)
	return nil
}
