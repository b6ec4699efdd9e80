package models

import "time"

// VoteType is the direction of a vote. The zero value means "no vote".
type VoteType string

const (
	// VoteTypeUp is an upvote.
	VoteTypeUp VoteType = "UP"
	// VoteTypeDown is a downvote.
	VoteTypeDown VoteType = "DOWN"
	// VoteTypeNone is the absence of a vote; never persisted.
	VoteTypeNone VoteType = ""
)

// Vote records a user's vote on a post.
// The combination of UserID and PostID must be unique.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_vote_user_post" json:"post_id"`
	Type      VoteType  `gorm:"type:varchar(10);not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Vote) TableName() string {
	return "votes"
}
