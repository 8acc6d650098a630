package model

import "time"

type Purchase struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	PlanID    string    `gorm:"size:32;not null" json:"planId"`
	Amount    int       `gorm:"not null" json:"amount"`
	Credits   int       `gorm:"not null" json:"credits"`
	IsPaid    bool      `gorm:"not null;default:false" json:"isPaid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
