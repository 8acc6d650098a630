package model

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultChatName = "New chat"

type Chat struct {
	ID        uint                         `gorm:"primaryKey" json:"_id"`
	UserID    uint                         `gorm:"not null;index" json:"userId"`
	UserName  string                       `gorm:"size:64;not null" json:"userName"`
	Name      string                       `gorm:"size:128;not null" json:"name"`
	Messages  datatypes.JSONSlice[Message] `gorm:"not null" json:"messages"`
	CreatedAt time.Time                    `json:"createdAt"`
	UpdatedAt time.Time                    `gorm:"index" json:"updatedAt"`
}
