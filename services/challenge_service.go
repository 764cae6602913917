// services/challenge_service.go - Quiz Challenge Lifecycle
package services

import (
	"errors"
	"strconv"
	"time"
	"ustaadgpt/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService drives the two-party asynchronous challenge lifecycle:
// pending -> in-progress -> completed, with exactly-once score submission
// per participant and at-most-once finalization regardless of how the two
// players' requests interleave. Every mutation that the lifecycle invariants
// depend on is a conditional UPDATE checked via RowsAffected, so two
// near-simultaneous submissions can never both run the completion step.
type ChallengeService struct {
	db *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{db: db}
}

// CreateChallenge creates a pending challenge from challenger to recipient
// over a quiz set the challenger owns. The quiz set is referenced, never
// copied; participant display fields are denormalized onto the record.
func (s *ChallengeService) CreateChallenge(challengerID, recipientID, bookID, quizSetID uint) (*models.Challenge, error) {
	if challengerID == recipientID {
		return nil, ErrInvalidParticipants
	}

	var challenger, recipient models.User
	if err := s.db.First(&challenger, challengerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidParticipants
		}
		return nil, err
	}
	if err := s.db.First(&recipient, recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidParticipants
		}
		return nil, err
	}

	// The challenger must own the referenced content.
	var book models.Book
	if err := s.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var quizSet models.QuizSet
	if err := s.db.First(&quizSet, quizSetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if book.UserID != challengerID || quizSet.BookID != bookID {
		return nil, ErrForbidden
	}

	challenge := &models.Challenge{
		PublicID:         uuid.New().String(),
		BookID:           bookID,
		QuizSetID:        quizSetID,
		ChallengerID:     challengerID,
		ChallengerName:   displayName(&challenger),
		ChallengerAvatar: challenger.Avatar,
		RecipientID:      recipientID,
		RecipientName:    displayName(&recipient),
		RecipientAvatar:  recipient.Avatar,
		Status:           models.ChallengeStatusPending,
		CreatedAt:        time.Now(),
	}

	if err := s.db.Create(challenge).Error; err != nil {
		return nil, err
	}

	return challenge, nil
}

// GetChallenge fetches a challenge by its public id.
func (s *ChallengeService) GetChallenge(publicID string) (*models.Challenge, error) {
	return getChallenge(s.db, publicID)
}

// ListChallenges returns all challenges the user participates in,
// newest first. Challenges are never deleted; this is the user's full
// head-to-head history.
func (s *ChallengeService) ListChallenges(uid uint) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.db.Where("challenger_id = ? OR recipient_id = ?", uid, uid).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// EnterChallenge records that actingUID opened the quiz. The first open by
// either participant flips pending -> in-progress; re-entering an
// in-progress challenge is a no-op. A participant who already submitted
// gets ErrAlreadyCompleted so the caller can redirect instead of replaying.
func (s *ChallengeService) EnterChallenge(publicID string, actingUID uint) (*models.Challenge, error) {
	challenge, err := getChallenge(s.db, publicID)
	if err != nil {
		return nil, err
	}
	if !challenge.IsParticipant(actingUID) {
		return nil, ErrForbidden
	}
	if challenge.ScoreOf(actingUID) != nil {
		return nil, ErrAlreadyCompleted
	}

	if challenge.Status == models.ChallengeStatusPending {
		// Conditional start: only one of two concurrent entries performs
		// an effective write, the other matches zero rows.
		err := s.db.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challenge.ID, models.ChallengeStatusPending).
			Update("status", models.ChallengeStatusInProgress).Error
		if err != nil {
			return nil, err
		}
	}

	return getChallenge(s.db, publicID)
}

// SubmitScore writes actingUID's score and, when the opponent's score is
// already present, finalizes the challenge: computes the winner, marks it
// completed and updates both players' aggregate stats. Returns the fresh
// record and whether this call performed the finalization.
//
// The whole operation runs in one transaction. The score write is guarded
// by "<slot> IS NULL" (exactly-once per participant) and the completion
// write by "status <> completed" (at-most-once per challenge). Because both
// participants' updates target the same row, the database serializes them;
// whichever submission commits second observes the other score on its
// re-read and performs the completion.
func (s *ChallengeService) SubmitScore(publicID string, actingUID uint, score int) (*models.Challenge, bool, error) {
	var result *models.Challenge
	isFinal := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		challenge, err := getChallenge(tx, publicID)
		if err != nil {
			return err
		}
		if !challenge.IsParticipant(actingUID) {
			return ErrForbidden
		}
		if challenge.Status == models.ChallengeStatusCompleted || challenge.ScoreOf(actingUID) != nil {
			return ErrAlreadyCompleted
		}

		var total int64
		if err := tx.Model(&models.Question{}).
			Where("quiz_set_id = ?", challenge.QuizSetID).
			Count(&total).Error; err != nil {
			return err
		}
		if score < 0 || int64(score) > total {
			return ErrInvalidScore
		}

		scoreColumn := "recipient_score"
		if actingUID == challenge.ChallengerID {
			scoreColumn = "challenger_score"
		}

		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND "+scoreColumn+" IS NULL", challenge.ID).
			Update(scoreColumn, score)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race against a duplicate submission from the same
			// participant; the stored score stays untouched.
			return ErrAlreadyCompleted
		}

		// Submitting implies having entered; promote a still-pending record.
		if err := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challenge.ID, models.ChallengeStatusPending).
			Update("status", models.ChallengeStatusInProgress).Error; err != nil {
			return err
		}

		fresh, err := getChallenge(tx, publicID)
		if err != nil {
			return err
		}

		if fresh.ChallengerScore != nil && fresh.RecipientScore != nil {
			winner := models.DecideWinner(fresh.ChallengerID, fresh.RecipientID,
				*fresh.ChallengerScore, *fresh.RecipientScore)
			now := time.Now()

			res := tx.Model(&models.Challenge{}).
				Where("id = ? AND status <> ?", fresh.ID, models.ChallengeStatusCompleted).
				Updates(map[string]interface{}{
					"status":       models.ChallengeStatusCompleted,
					"winner":       winner,
					"completed_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				isFinal = true
				if err := applyChallengeResult(tx, fresh, winner); err != nil {
					return err
				}
			}

			fresh, err = getChallenge(tx, publicID)
			if err != nil {
				return err
			}
		}

		result = fresh
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, isFinal, nil
}

// applyChallengeResult updates both participants' aggregate stats inside
// the finalizing transaction, so stats and the completed record commit
// together.
func applyChallengeResult(tx *gorm.DB, challenge *models.Challenge, winner string) error {
	draw := winner == models.WinnerDraw
	challengerWon := winner == strconv.FormatUint(uint64(challenge.ChallengerID), 10)
	recipientWon := winner == strconv.FormatUint(uint64(challenge.RecipientID), 10)

	if err := applyUserResult(tx, challenge.ChallengerID, *challenge.ChallengerScore, challengerWon, draw); err != nil {
		return err
	}
	return applyUserResult(tx, challenge.RecipientID, *challenge.RecipientScore, recipientWon, draw)
}

func applyUserResult(tx *gorm.DB, userID uint, score int, won, draw bool) error {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return err
	}

	user.TotalChallenges++
	user.Points += challengePoints(score, won, draw)

	switch {
	case won:
		user.Wins++
		user.CurrentStreak++
		if user.CurrentStreak > user.BestStreak {
			user.BestStreak = user.CurrentStreak
		}
	case draw:
		user.Draws++
	default:
		user.Losses++
		user.CurrentStreak = 0
	}

	if err := tx.Save(&user).Error; err != nil {
		return err
	}

	return awardBadges(tx, &user)
}

// challengePoints follows the app's scoring: a flat outcome bonus plus a
// per-correct-answer reward.
func challengePoints(score int, won, draw bool) int {
	points := score * 5
	switch {
	case won:
		points += 50
	case draw:
		points += 25
	default:
		points += 10
	}
	return points
}

// awardBadges grants any challenge badges the user newly qualifies for.
// Missing badge rows (not yet seeded) are skipped silently.
func awardBadges(tx *gorm.DB, user *models.User) error {
	earned := []string{}
	if user.Wins >= 1 {
		earned = append(earned, "First Victory")
	}
	if user.CurrentStreak >= 3 {
		earned = append(earned, "On a Roll")
	}
	if user.Wins >= 10 {
		earned = append(earned, "Challenge Champion")
	}

	for _, name := range earned {
		var badge models.Badge
		if err := tx.Where("name = ?", name).First(&badge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", user.ID, badge.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		userBadge := models.UserBadge{
			UserID:   user.ID,
			BadgeID:  badge.ID,
			EarnedAt: time.Now(),
		}
		if err := tx.Create(&userBadge).Error; err != nil {
			return err
		}
		if badge.PointReward > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("points", gorm.Expr("points + ?", badge.PointReward)).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func getChallenge(db *gorm.DB, publicID string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := db.Where("public_id = ?", publicID).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func displayName(user *models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}
