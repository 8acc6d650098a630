package app

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/model"
	"quickgpt/internal/repository"
)

type GalleryCache interface {
	GetImages(ctx context.Context) ([]model.GalleryImage, bool, error)
	SetImages(ctx context.Context, images []model.GalleryImage) error
	Invalidate(ctx context.Context) error
}

type GalleryService struct {
	chatRepo *repository.ChatRepository
	cache    GalleryCache
}

func NewGalleryService(chatRepo *repository.ChatRepository, cache GalleryCache) *GalleryService {
	return &GalleryService{chatRepo: chatRepo, cache: cache}
}

// PublishedImages lists every published image across all chats. Chats are
// scanned in storage order and the result is reversed, so images from
// later-created chats come first; within a chat, later messages come first.
// This is not a global timestamp ordering.
func (s *GalleryService) PublishedImages(ctx context.Context) ([]model.GalleryImage, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.GetImages(ctx); err == nil && hit {
			return cached, nil
		}
	}

	images := make([]model.GalleryImage, 0)
	err := s.chatRepo.Each(ctx, func(chat model.Chat) error {
		for _, msg := range chat.Messages {
			if !msg.Published() {
				continue
			}
			images = append(images, model.GalleryImage{
				ImageURL: msg.Content,
				UserName: chat.UserName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(images)

	if s.cache != nil {
		if err := s.cache.SetImages(ctx, images); err != nil {
			logrus.WithError(err).Debug("cache gallery failed")
		}
	}
	return images, nil
}

func invalidateGallery(ctx context.Context, cache GalleryCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logrus.WithError(err).Warn("invalidate gallery cache failed")
	}
}
