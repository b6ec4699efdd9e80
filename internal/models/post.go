package models

import "time"

// Visibility gates read access to a post for non-owners without an accepted
// follow edge.
type Visibility string

const (
	// VisibilityPublic makes a post readable by anyone.
	VisibilityPublic Visibility = "PUBLIC"
	// VisibilityPrivate restricts a post to the owner and accepted followers.
	VisibilityPrivate Visibility = "PRIVATE"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// MaxPostDescriptionLen is the upper bound on a post description.
const MaxPostDescriptionLen = 500

// Photo bounds per post. The floor is enforced at creation only; an update may
// leave fewer photos as long as the net count never exceeds the ceiling.
const (
	MinPostPhotos = 1
	MaxPostPhotos = 3
)

// Post is a geotagged photo post.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Description string     `gorm:"size:500" json:"description"`
	Latitude    float64    `gorm:"not null" json:"latitude"`
	Longitude   float64    `gorm:"not null" json:"longitude"`
	Visibility  Visibility `gorm:"type:varchar(10);not null;default:'PUBLIC';index" json:"visibility"`
	Reputation  int        `gorm:"not null;default:0" json:"reputation"`
	Photos      []Photo    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"photos"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// PhotoURLs returns the post's photo URLs in display order.
func (p *Post) PhotoURLs() []string {
	urls := make([]string, 0, len(p.Photos))
	for _, photo := range p.Photos {
		urls = append(urls, photo.URL)
	}
	return urls
}

// Photo is one stored image belonging to a post. Position preserves upload
// order, which defines display order.
type Photo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	URL       string    `gorm:"not null" json:"url"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}
