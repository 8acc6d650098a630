package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quickgpt/internal/model"
	"quickgpt/internal/platform/sqlite"
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

func createTestUser(t *testing.T, db *gorm.DB, email string, credits int) *model.User {
	t.Helper()
	user := &model.User{Name: "user " + email, Email: email, PasswordHash: "hash", Credits: credits}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createTestChat(t *testing.T, db *gorm.DB, owner *model.User) *model.Chat {
	t.Helper()
	chat := &model.Chat{UserID: owner.ID, UserName: owner.Name, Name: model.DefaultChatName}
	require.NoError(t, NewChatRepository(db).Create(context.Background(), chat))
	return chat
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	user, err := NewUserRepository(db).GetByID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.Credits
}
