package models

import (
	"time"

	"gorm.io/gorm"
)

type Discussion struct {
	gorm.Model
	Title    string `gorm:"not null"`
	Content  string `gorm:"not null"`
	UserID   uint   `gorm:"not null;index"`
	Edited   bool   `gorm:"default:false"`
	EditedAt *time.Time
	Pinned   bool `gorm:"default:false"`
	Locked   bool `gorm:"default:false"`

	User     User      `gorm:"foreignKey:UserID"`
	Comments []Comment `gorm:"foreignKey:DiscussionID"`
}

type Comment struct {
	gorm.Model
	Content      string `gorm:"not null"`
	UserID       uint   `gorm:"not null;index"`
	DiscussionID uint   `gorm:"not null;index"`
	Edited       bool   `gorm:"default:false"`
	EditedAt     *time.Time

	User User `gorm:"foreignKey:UserID"`
}

// DiscussionLike is unique per (discussion, user); liking twice toggles
// the row away instead of duplicating it.
type DiscussionLike struct {
	gorm.Model
	UserID       uint `gorm:"not null;uniqueIndex:idx_user_discussion"`
	DiscussionID uint `gorm:"not null;uniqueIndex:idx_user_discussion"`
}

type CommentLike struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_comment"`
	CommentID uint `gorm:"not null;uniqueIndex:idx_user_comment"`
}

// SiteLike is the legacy site-wide "patikt" feature: one row per user,
// idempotent, unrelated to per-discussion likes.
type SiteLike struct {
	gorm.Model
	UserID uint `gorm:"not null;unique"`
}

// SiteLikeCounter is a legacy singleton aggregate. It is reconciled to
// count(site_likes) whenever it is read.
type SiteLikeCounter struct {
	gorm.Model
	Count int64 `gorm:"default:0"`
}
