package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/model"
	"quickgpt/internal/repository"
)

type ChatListCache interface {
	GetChats(ctx context.Context, userID uint) ([]model.Chat, bool, error)
	SetChats(ctx context.Context, userID uint, chats []model.Chat) error
	Invalidate(ctx context.Context, userID uint) error
}

type ChatService struct {
	chatRepo     *repository.ChatRepository
	listCache    ChatListCache
	galleryCache GalleryCache
}

func NewChatService(chatRepo *repository.ChatRepository, listCache ChatListCache, galleryCache GalleryCache) *ChatService {
	return &ChatService{chatRepo: chatRepo, listCache: listCache, galleryCache: galleryCache}
}

func (s *ChatService) Create(ctx context.Context, owner *model.User) (*model.Chat, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrInvalidInput
	}

	chat := &model.Chat{
		UserID:   owner.ID,
		UserName: owner.Name,
		Name:     model.DefaultChatName,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	s.invalidate(ctx, owner.ID)
	return chat, nil
}

// List returns the owner's chats, most recently updated first.
func (s *ChatService) List(ctx context.Context, userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.listCache != nil {
		if cached, hit, err := s.listCache.GetChats(ctx, userID); err == nil && hit {
			return cached, nil
		}
	}

	chats, err := s.chatRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.listCache != nil {
		if err := s.listCache.SetChats(ctx, userID, chats); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Debug("cache chat list failed")
		}
	}
	return chats, nil
}

// Delete removes the chat if the user owns it. Chats that are missing or
// owned by someone else are left alone and the call still succeeds.
func (s *ChatService) Delete(ctx context.Context, userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}

	rows, err := s.chatRepo.DeleteByIDAndUserID(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if rows > 0 {
		s.invalidate(ctx, userID)
		invalidateGallery(ctx, s.galleryCache)
	}
	return nil
}

func (s *ChatService) invalidate(ctx context.Context, userID uint) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.Invalidate(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("invalidate chat list cache failed")
	}
}
