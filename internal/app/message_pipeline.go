package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quickgpt/internal/generation"
	"quickgpt/internal/model"
	"quickgpt/internal/repository"
)

type CommitPublisher interface {
	PublishCommit(ctx context.Context, commitID string) error
}

type MessagePipeline struct {
	chatRepo   *repository.ChatRepository
	ledger     *repository.LedgerRepository
	generators *generation.Registry
	publisher  CommitPublisher
	settler    *CommitSettler
	now        func() time.Time
}

type SendMessageInput struct {
	UserID  uint
	ChatID  uint
	Prompt  string
	Mode    generation.Mode
	Publish bool
}

// SendMessageResult carries the assistant reply and the id of the commit that
// still has to be applied once the reply has been delivered.
type SendMessageResult struct {
	Reply    model.Message
	CommitID string
}

func NewMessagePipeline(
	chatRepo *repository.ChatRepository,
	ledger *repository.LedgerRepository,
	generators *generation.Registry,
	publisher CommitPublisher,
	settler *CommitSettler,
) *MessagePipeline {
	return &MessagePipeline{
		chatRepo:   chatRepo,
		ledger:     ledger,
		generators: generators,
		publisher:  publisher,
		settler:    settler,
		now:        time.Now,
	}
}

// Send reserves the mode's cost, generates the reply and records the pending
// user/assistant pair. Nothing is written to the chat yet; call Commit after
// the reply has been returned to the client.
func (p *MessagePipeline) Send(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if input.UserID == 0 || input.ChatID == 0 || prompt == "" {
		return nil, ErrInvalidInput
	}
	generator, err := p.generators.Get(input.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	chat, err := p.chatRepo.GetByIDAndUserID(ctx, input.ChatID, input.UserID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	commit, err := p.ledger.Reserve(ctx, input.UserID, chat.ID, string(input.Mode), generator.Cost())
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"user_id":   input.UserID,
		"chat_id":   chat.ID,
		"mode":      input.Mode,
		"commit_id": commit.ID,
	})

	userMessage := model.NewUserMessage(prompt, p.now())
	reply, err := generator.Generate(ctx, generation.Request{Prompt: prompt, Publish: input.Publish})
	if err != nil {
		log.WithError(err).Warn("generation failed, releasing credits")
		p.release(ctx, commit.ID)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	recorded, err := p.ledger.Record(ctx, commit.ID, []model.Message{userMessage, reply})
	if err != nil {
		p.release(ctx, commit.ID)
		return nil, err
	}
	if !recorded {
		log.Error("reservation no longer pending, reply discarded")
		return nil, fmt.Errorf("%w: reservation %s expired", ErrGenerationFailed, commit.ID)
	}

	return &SendMessageResult{Reply: reply, CommitID: commit.ID}, nil
}

// Commit hands the recorded commit to the persist worker. If the queue is
// unavailable the commit is applied in place; should that fail as well the
// reconciler picks it up later.
func (p *MessagePipeline) Commit(ctx context.Context, commitID string) error {
	if p.publisher != nil {
		err := p.publisher.PublishCommit(ctx, commitID)
		if err == nil {
			return nil
		}
		logrus.WithError(err).WithField("commit_id", commitID).Warn("publish commit failed, applying inline")
	}
	return p.settler.Apply(ctx, commitID)
}

func (p *MessagePipeline) release(ctx context.Context, commitID string) {
	if err := p.settler.Release(context.WithoutCancel(ctx), commitID); err != nil {
		logrus.WithError(err).WithField("commit_id", commitID).Error("release credits failed")
	}
}
