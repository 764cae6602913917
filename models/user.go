// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	Bio         string  `json:"bio"`
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`
	IsBanned    bool    `gorm:"default:false" json:"is_banned"`

	// Study progress
	Points        int `gorm:"default:0" json:"points"`
	CurrentStreak int `gorm:"default:0" json:"current_streak"`
	BestStreak    int `gorm:"default:0" json:"best_streak"`

	// Challenge record
	TotalChallenges int `gorm:"default:0" json:"total_challenges"`
	Wins            int `gorm:"default:0" json:"wins"`
	Losses          int `gorm:"default:0" json:"losses"`
	Draws           int `gorm:"default:0" json:"draws"`

	// Timestamps
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login"`
	LastActivity time.Time `json:"last_activity"`

	// Relationships
	Books  []Book      `gorm:"foreignKey:UserID" json:"books,omitempty"`
	Badges []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Category    string    `gorm:"not null;index" json:"category"` // Challenge, Streak, Social
	Icon        string    `json:"icon"`
	PointReward int       `gorm:"default:0" json:"point_reward"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	BadgeID  uint      `gorm:"not null;index" json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Badge Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (Badge) TableName() string {
	return "badges"
}

func (UserBadge) TableName() string {
	return "user_badges"
}
