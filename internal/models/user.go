// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered Agora account.
//
// Reputation is mutated only through vote transitions and always inside the
// same transaction as the originating vote.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"unique;not null" json:"username"`
	Email          string    `gorm:"unique;not null" json:"email"`
	Name           string    `json:"name"`
	Password       string    `gorm:"not null" json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Reputation     int       `gorm:"not null;default:0" json:"reputation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Posts          []Post    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}

// UserSummary is the public projection of a user embedded in follow listings
// and search results.
type UserSummary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Summary strips credentials and private fields from a user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}
