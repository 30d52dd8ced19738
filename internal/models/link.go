package models

import (
	"time"
)

type Link struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	URL         string `gorm:"not null" json:"url"`
	Description string `gorm:"type:text;not null" json:"description"`
	// PostedByID is nil for links submitted anonymously.
	PostedByID *uint     `gorm:"index" json:"postedById"`
	PostedBy   *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
