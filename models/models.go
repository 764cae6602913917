// models/models.go - Study Content & Social Models (Challenge defined in challenge.go)
package models

import (
	"time"
)

// Book represents an uploaded study document and the material generated from it
type Book struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"user_id" gorm:"not null;index"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title      string      `json:"title" gorm:"not null;size:200"`
	SourceName string      `json:"source_name" gorm:"size:255"` // original file name
	Summary    string      `json:"summary" gorm:"type:text"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	QuizSets   []QuizSet   `json:"quiz_sets,omitempty" gorm:"foreignKey:BookID"`
	Flashcards []Flashcard `json:"flashcards,omitempty" gorm:"foreignKey:BookID"`
}

// QuizSet is an immutable set of generated questions for a book
type QuizSet struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	BookID    uint       `json:"book_id" gorm:"not null;index"`
	Book      *Book      `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Title     string     `json:"title" gorm:"not null;size:200"`
	CreatedAt time.Time  `json:"created_at"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizSetID"`
}

// Question is a single multiple-choice question inside a quiz set
type Question struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuizSetID    uint      `json:"quiz_set_id" gorm:"not null;index"`
	QuizSet      *QuizSet  `json:"quiz_set,omitempty" gorm:"foreignKey:QuizSetID"`
	Text         string    `json:"text" gorm:"not null;type:text"`
	Options      string    `json:"options" gorm:"not null;type:text"` // JSON-encoded []string
	CorrectIndex int       `json:"correct_index" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Flashcard is a generated front/back study card for a book
type Flashcard struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BookID    uint      `json:"book_id" gorm:"not null;index"`
	Book      *Book     `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Front     string    `json:"front" gorm:"not null;type:text"`
	Back      string    `json:"back" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend represents a friendship between users
type Friend struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	FriendID  uint      `json:"friend_id" gorm:"not null;index"`
	Friend    *User     `json:"friend,omitempty" gorm:"foreignKey:FriendID"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendRequest represents a pending friend request
type FriendRequest struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID uint      `json:"from_user_id" gorm:"not null;index"`
	FromUser   *User     `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUserID   uint      `json:"to_user_id" gorm:"not null;index"`
	ToUser     *User     `json:"to_user,omitempty" gorm:"foreignKey:ToUserID"`
	Status     string    `json:"status" gorm:"default:'pending';size:20"` // pending, accepted, rejected
	CreatedAt  time.Time `json:"created_at"`
}

// TableName methods for custom table names (optional)
func (Book) TableName() string {
	return "books"
}

func (QuizSet) TableName() string {
	return "quiz_sets"
}

func (Question) TableName() string {
	return "questions"
}

func (Flashcard) TableName() string {
	return "flashcards"
}

func (Friend) TableName() string {
	return "friends"
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}
