package models

import (
	"time"
)

// Vote is a user's single, permanent vote for a link. The composite unique
// index is the authoritative guard: the application-level lookup done before
// inserting only exists to produce a friendly error in the common case.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_link" json:"userId"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	LinkID    uint      `gorm:"not null;index;uniqueIndex:idx_vote_user_link" json:"linkId"`
	Link      Link      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
