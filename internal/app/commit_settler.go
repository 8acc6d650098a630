package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/repository"
)

// CommitSettler finishes credit commits: it applies generated ones to their
// chats and releases abandoned reservations, keeping the caches in step.
// The persist worker, the reconciler and the inline fallback all go
// through it.
type CommitSettler struct {
	ledger       *repository.LedgerRepository
	listCache    ChatListCache
	galleryCache GalleryCache
}

func NewCommitSettler(ledger *repository.LedgerRepository, listCache ChatListCache, galleryCache GalleryCache) *CommitSettler {
	return &CommitSettler{ledger: ledger, listCache: listCache, galleryCache: galleryCache}
}

// Apply is safe to call any number of times for the same commit.
func (s *CommitSettler) Apply(ctx context.Context, commitID string) error {
	commit, outcome, err := s.ledger.Apply(ctx, commitID)
	if err != nil {
		return err
	}

	switch outcome {
	case repository.Applied:
		if s.listCache != nil {
			if err := s.listCache.Invalidate(ctx, commit.UserID); err != nil {
				logrus.WithError(err).WithField("user_id", commit.UserID).Warn("invalidate chat list cache failed")
			}
		}
		for _, msg := range commit.Messages {
			if msg.Published() {
				invalidateGallery(ctx, s.galleryCache)
				break
			}
		}
	case repository.ChatGone:
		logrus.WithFields(logrus.Fields{
			"commit_id": commitID,
			"chat_id":   commit.ChatID,
		}).Warn("chat deleted before commit applied, messages dropped")
	}
	return nil
}

func (s *CommitSettler) Release(ctx context.Context, commitID string) error {
	released, err := s.ledger.Release(ctx, commitID)
	if err != nil {
		return err
	}
	if released {
		logrus.WithField("commit_id", commitID).Info("credit reservation released")
	}
	return nil
}
