package models

import "time"

// FollowStatus represents the state of a follow edge.
type FollowStatus string

const (
	// FollowStatusPending indicates a follow request awaiting the target's decision.
	FollowStatusPending FollowStatus = "PENDING"
	// FollowStatusAccepted indicates an accepted follow edge.
	FollowStatusAccepted FollowStatus = "ACCEPTED"
)

// Follow is a directed edge from follower to followee.
//
// The ordered pair (FollowerID, FollowingID) is unique; reciprocal edges are
// independent records and never satisfy each other's access checks.
type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FollowerID  uint         `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint         `gorm:"not null;uniqueIndex:idx_follow_pair" json:"following_id"`
	Status      FollowStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_follows_status" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`

	// Relationships
	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"following,omitempty"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}
