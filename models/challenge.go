// models/challenge.go - Quiz Challenge Data Model
package models

import (
	"strconv"
	"time"
)

// Challenge status constants
type ChallengeStatus string

const (
	ChallengeStatusPending    ChallengeStatus = "pending"
	ChallengeStatusInProgress ChallengeStatus = "in-progress"
	ChallengeStatusCompleted  ChallengeStatus = "completed"
)

// WinnerDraw is stored in Challenge.Winner when both final scores are equal.
const WinnerDraw = "draw"

// Challenge represents one asynchronous head-to-head quiz competition
// between two users over a pre-existing quiz set owned by the challenger.
// Participant display fields are denormalized at creation so completed
// challenges render without joins even if a profile changes later.
type Challenge struct {
	ID        uint     `json:"-" gorm:"primaryKey"`
	PublicID  string   `json:"id" gorm:"uniqueIndex;not null;size:36"` // opaque UUID, assigned once
	BookID    uint     `json:"book_id" gorm:"not null;index"`
	Book      *Book    `json:"book,omitempty" gorm:"foreignKey:BookID"`
	QuizSetID uint     `json:"quiz_set_id" gorm:"not null;index"`
	QuizSet   *QuizSet `json:"quiz_set,omitempty" gorm:"foreignKey:QuizSetID"`

	ChallengerID     uint   `json:"challenger_id" gorm:"not null;index"`
	ChallengerName   string `json:"challenger_name" gorm:"size:100"`
	ChallengerAvatar string `json:"challenger_avatar" gorm:"size:255"`
	ChallengerScore  *int   `json:"challenger_score"` // nil until the challenger submits

	RecipientID     uint   `json:"recipient_id" gorm:"not null;index"`
	RecipientName   string `json:"recipient_name" gorm:"size:100"`
	RecipientAvatar string `json:"recipient_avatar" gorm:"size:255"`
	RecipientScore  *int   `json:"recipient_score"` // nil until the recipient submits

	Status      ChallengeStatus `json:"status" gorm:"not null;default:'pending';index"`
	Winner      *string         `json:"winner"`       // winning uid as string, or "draw"; nil until completed
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	CompletedAt *time.Time      `json:"completed_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// IsParticipant reports whether uid is one of the two players.
func (ch *Challenge) IsParticipant(uid uint) bool {
	return uid == ch.ChallengerID || uid == ch.RecipientID
}

// ScoreOf returns the stored score slot for uid. The caller must have
// verified uid is a participant.
func (ch *Challenge) ScoreOf(uid uint) *int {
	if uid == ch.ChallengerID {
		return ch.ChallengerScore
	}
	return ch.RecipientScore
}

// OpponentScore returns the other participant's score slot.
func (ch *Challenge) OpponentScore(uid uint) *int {
	if uid == ch.ChallengerID {
		return ch.RecipientScore
	}
	return ch.ChallengerScore
}

// DecideWinner computes the winner value from two final scores: the
// strictly higher score wins, equal scores are always a draw.
func DecideWinner(challengerID, recipientID uint, challengerScore, recipientScore int) string {
	switch {
	case challengerScore > recipientScore:
		return strconv.FormatUint(uint64(challengerID), 10)
	case recipientScore > challengerScore:
		return strconv.FormatUint(uint64(recipientID), 10)
	default:
		return WinnerDraw
	}
}
