package model

import (
	"time"

	"gorm.io/datatypes"
)

// Commit statuses. A commit moves reserved -> generated -> committed on the
// happy path, or reserved -> released when generation fails or is abandoned.
const (
	CommitReserved  = "reserved"
	CommitGenerated = "generated"
	CommitCommitted = "committed"
	CommitReleased  = "released"
)

// CreditCommit journals one metered generation request. The credits are taken
// when the row is created; Messages holds the pending user/assistant pair
// until the commit is applied to its chat.
type CreditCommit struct {
	ID        string                       `gorm:"primaryKey;size:32" json:"id"`
	UserID    uint                         `gorm:"not null;index" json:"userId"`
	ChatID    uint                         `gorm:"not null;index" json:"chatId"`
	Mode      string                       `gorm:"size:16;not null" json:"mode"`
	Cost      int                          `gorm:"not null" json:"cost"`
	Status    string                       `gorm:"size:16;not null;index:idx_commit_status_updated,priority:1" json:"status"`
	Messages  datatypes.JSONSlice[Message] `json:"messages"`
	CreatedAt time.Time                    `json:"createdAt"`
	UpdatedAt time.Time                    `gorm:"index:idx_commit_status_updated,priority:2" json:"updatedAt"`
}
