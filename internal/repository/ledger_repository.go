package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickgpt/internal/model"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
)

// ApplyOutcome describes what Apply did with a commit.
type ApplyOutcome int

const (
	// Applied means the pending messages were appended to the chat.
	Applied ApplyOutcome = iota
	// ChatGone means the commit settled but its chat no longer exists.
	ChatGone
	// Skipped means the commit was not in the generated state: already
	// applied, released, still reserved, or unknown.
	Skipped
)

// LedgerRepository owns user credit balances and the commit journal.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Reserve takes cost credits from the user if, and only if, the balance
// covers it, and journals the reservation. The decrement and the balance
// check are one statement, so concurrent requests cannot overdraw.
func (r *LedgerRepository) Reserve(ctx context.Context, userID, chatID uint, mode string, cost int) (*model.CreditCommit, error) {
	if cost <= 0 {
		return nil, ErrInvalidAmount
	}

	commit := &model.CreditCommit{
		ID:       xid.New().String(),
		UserID:   userID,
		ChatID:   chatID,
		Mode:     mode,
		Cost:     cost,
		Status:   model.CommitReserved,
		Messages: datatypes.JSONSlice[model.Message]{},
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ? AND credits >= ?", userID, cost).
			Update("credits", gorm.Expr("credits - ?", cost))
		if result.Error != nil {
			return fmt.Errorf("debit credits failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientCredits
		}
		if err := tx.Create(commit).Error; err != nil {
			return fmt.Errorf("create credit commit failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commit, nil
}

// Record attaches the generated messages to a reserved commit and marks it
// generated. It reports false if the commit was not reserved.
func (r *LedgerRepository) Record(ctx context.Context, commitID string, messages []model.Message) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.CreditCommit{}).
		Where("id = ? AND status = ?", commitID, model.CommitReserved).
		Updates(map[string]any{
			"status":     model.CommitGenerated,
			"messages":   datatypes.NewJSONSlice(messages),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("record credit commit failed: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Release gives the reserved credits back and closes the commit. Calling it
// again, or on a commit that already moved past reserved, is a no-op.
func (r *LedgerRepository) Release(ctx context.Context, commitID string) (bool, error) {
	var released bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commit, err := lockCommit(tx, commitID)
		if err != nil || commit == nil || commit.Status != model.CommitReserved {
			return err
		}

		result := tx.Model(&model.CreditCommit{}).
			Where("id = ? AND status = ?", commitID, model.CommitReserved).
			Updates(map[string]any{
				"status":     model.CommitReleased,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("release credit commit failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := creditUser(tx, commit.UserID, commit.Cost); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

// Apply persists a generated commit's messages into its chat and marks it
// committed. Only the first call for a commit has any effect.
func (r *LedgerRepository) Apply(ctx context.Context, commitID string) (*model.CreditCommit, ApplyOutcome, error) {
	var (
		applied *model.CreditCommit
		outcome = Skipped
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commit, err := lockCommit(tx, commitID)
		if err != nil || commit == nil || commit.Status != model.CommitGenerated {
			return err
		}

		result := tx.Model(&model.CreditCommit{}).
			Where("id = ? AND status = ?", commitID, model.CommitGenerated).
			Updates(map[string]any{
				"status":     model.CommitCommitted,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("commit credit commit failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		found, err := appendMessages(tx, commit.ChatID, commit.UserID, commit.Messages)
		if err != nil {
			return err
		}
		commit.Status = model.CommitCommitted
		applied = commit
		if found {
			outcome = Applied
		} else {
			outcome = ChatGone
		}
		return nil
	})
	if err != nil {
		return nil, Skipped, err
	}
	return applied, outcome, nil
}

// Credit adds amount to the user's balance.
func (r *LedgerRepository) Credit(ctx context.Context, userID uint, amount int) error {
	return creditUser(r.db.WithContext(ctx), userID, amount)
}

func (r *LedgerRepository) GetCommit(ctx context.Context, commitID string) (*model.CreditCommit, error) {
	var commit model.CreditCommit
	if err := r.db.WithContext(ctx).Where("id = ?", commitID).First(&commit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit commit failed: %w", err)
	}
	return &commit, nil
}

// ListStale returns commits stuck in status since before the cutoff, oldest first.
func (r *LedgerRepository) ListStale(ctx context.Context, status string, before time.Time, limit int) ([]model.CreditCommit, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var commits []model.CreditCommit
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&commits).Error; err != nil {
		return nil, fmt.Errorf("list stale credit commits failed: %w", err)
	}
	return commits, nil
}

func lockCommit(tx *gorm.DB, commitID string) (*model.CreditCommit, error) {
	var commit model.CreditCommit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", commitID).First(&commit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock credit commit failed: %w", err)
	}
	return &commit, nil
}

func creditUser(tx *gorm.DB, userID uint, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount)).Error; err != nil {
		return fmt.Errorf("credit user failed: %w", err)
	}
	return nil
}
