package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"
	"ustaadgpt/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Book{},
		&models.QuizSet{},
		&models.Question{},
		&models.Flashcard{},
		&models.Challenge{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		DisplayName: username,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createQuizSet(t *testing.T, db *gorm.DB, ownerID uint, questionCount int) (*models.Book, *models.QuizSet) {
	t.Helper()

	book := &models.Book{
		UserID:    ownerID,
		Title:     "Operating Systems Notes",
		CreatedAt: time.Now(),
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}

	quizSet := &models.QuizSet{
		BookID:    book.ID,
		Title:     "Chapter 1 Quiz",
		CreatedAt: time.Now(),
	}
	options, _ := json.Marshal([]string{"a", "b", "c", "d"})
	for i := 0; i < questionCount; i++ {
		quizSet.Questions = append(quizSet.Questions, models.Question{
			Text:         fmt.Sprintf("Question %d", i+1),
			Options:      string(options),
			CorrectIndex: i % 4,
		})
	}
	if err := db.Create(quizSet).Error; err != nil {
		t.Fatalf("create quiz set: %v", err)
	}

	return book, quizSet
}

func TestCreateChallenge(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if challenge.PublicID == "" {
		t.Error("expected a public id to be assigned")
	}
	if challenge.Status != models.ChallengeStatusPending {
		t.Errorf("status = %q, want pending", challenge.Status)
	}
	if challenge.ChallengerScore != nil || challenge.RecipientScore != nil {
		t.Error("both scores should start nil")
	}
	if challenge.Winner != nil {
		t.Error("winner should start nil")
	}
	if challenge.CompletedAt != nil {
		t.Error("completedAt should start nil")
	}
	if challenge.ChallengerName != "alice" || challenge.RecipientName != "bob" {
		t.Errorf("denormalized names = %q/%q, want alice/bob",
			challenge.ChallengerName, challenge.RecipientName)
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	outsider := createUser(t, db, "mallory")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	if _, err := svc.CreateChallenge(challenger.ID, challenger.ID, book.ID, quizSet.ID); !errors.Is(err, ErrInvalidParticipants) {
		t.Errorf("self challenge: err = %v, want ErrInvalidParticipants", err)
	}
	if _, err := svc.CreateChallenge(challenger.ID, 999, book.ID, quizSet.ID); !errors.Is(err, ErrInvalidParticipants) {
		t.Errorf("unknown recipient: err = %v, want ErrInvalidParticipants", err)
	}
	if _, err := svc.CreateChallenge(outsider.ID, recipient.ID, book.ID, quizSet.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner content: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown quiz set: err = %v, want ErrNotFound", err)
	}
}

func TestEnterChallenge(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if _, err := svc.EnterChallenge("missing-id", recipient.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown challenge: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.EnterChallenge(challenge.PublicID, 999); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-participant: err = %v, want ErrForbidden", err)
	}

	entered, err := svc.EnterChallenge(challenge.PublicID, recipient.ID)
	if err != nil {
		t.Fatalf("enter challenge: %v", err)
	}
	if entered.Status != models.ChallengeStatusInProgress {
		t.Errorf("status = %q, want in-progress", entered.Status)
	}

	// Re-entering is a no-op
	again, err := svc.EnterChallenge(challenge.PublicID, challenger.ID)
	if err != nil {
		t.Fatalf("re-enter challenge: %v", err)
	}
	if again.Status != models.ChallengeStatusInProgress {
		t.Errorf("status after re-enter = %q, want in-progress", again.Status)
	}

	// A participant who already submitted is redirected on re-entry
	if _, _, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 4); err != nil {
		t.Fatalf("submit score: %v", err)
	}
	if _, err := svc.EnterChallenge(challenge.PublicID, recipient.ID); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("re-enter after submit: err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestSubmitScoreFullScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if _, err := svc.EnterChallenge(challenge.PublicID, recipient.ID); err != nil {
		t.Fatalf("enter challenge: %v", err)
	}

	// First submission does not finalize
	record, isFinal, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 4)
	if err != nil {
		t.Fatalf("recipient submit: %v", err)
	}
	if isFinal {
		t.Error("first submission should not be final")
	}
	if record.RecipientScore == nil || *record.RecipientScore != 4 {
		t.Errorf("recipient score = %v, want 4", record.RecipientScore)
	}
	if record.Status != models.ChallengeStatusInProgress {
		t.Errorf("status = %q, want in-progress", record.Status)
	}
	if record.Winner != nil || record.CompletedAt != nil {
		t.Error("winner/completedAt must stay nil until both scores present")
	}

	// Second submission finalizes
	record, isFinal, err = svc.SubmitScore(challenge.PublicID, challenger.ID, 3)
	if err != nil {
		t.Fatalf("challenger submit: %v", err)
	}
	if !isFinal {
		t.Error("second submission should be final")
	}
	if record.Status != models.ChallengeStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.CompletedAt == nil {
		t.Error("completedAt should be set")
	}
	wantWinner := strconv.FormatUint(uint64(recipient.ID), 10)
	if record.Winner == nil || *record.Winner != wantWinner {
		t.Errorf("winner = %v, want %s", record.Winner, wantWinner)
	}

	// Aggregate stats updated for both players
	var winner, loser models.User
	if err := db.First(&winner, recipient.ID).Error; err != nil {
		t.Fatalf("reload winner: %v", err)
	}
	if err := db.First(&loser, challenger.ID).Error; err != nil {
		t.Fatalf("reload loser: %v", err)
	}
	if winner.Wins != 1 || winner.CurrentStreak != 1 || winner.TotalChallenges != 1 {
		t.Errorf("winner stats = wins %d streak %d total %d, want 1/1/1",
			winner.Wins, winner.CurrentStreak, winner.TotalChallenges)
	}
	if loser.Losses != 1 || loser.CurrentStreak != 0 || loser.TotalChallenges != 1 {
		t.Errorf("loser stats = losses %d streak %d total %d, want 1/0/1",
			loser.Losses, loser.CurrentStreak, loser.TotalChallenges)
	}
	if winner.Points <= loser.Points {
		t.Errorf("winner points %d should exceed loser points %d", winner.Points, loser.Points)
	}
}

func TestSubmitScoreTie(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if _, _, err := svc.SubmitScore(challenge.PublicID, challenger.ID, 3); err != nil {
		t.Fatalf("challenger submit: %v", err)
	}
	record, isFinal, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 3)
	if err != nil {
		t.Fatalf("recipient submit: %v", err)
	}

	if !isFinal {
		t.Error("second submission should be final")
	}
	if record.Winner == nil || *record.Winner != models.WinnerDraw {
		t.Errorf("winner = %v, want draw", record.Winner)
	}

	var alice, bob models.User
	db.First(&alice, challenger.ID)
	db.First(&bob, recipient.ID)
	if alice.Draws != 1 || bob.Draws != 1 {
		t.Errorf("draws = %d/%d, want 1/1", alice.Draws, bob.Draws)
	}
	if alice.Wins != 0 || bob.Wins != 0 || alice.Losses != 0 || bob.Losses != 0 {
		t.Error("a draw must record no wins or losses")
	}
}

func TestSubmitScoreExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}

	if _, _, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 4); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Re-submission fails and leaves the stored score untouched
	if _, _, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 1); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("re-submit: err = %v, want ErrAlreadyCompleted", err)
	}

	record, err := svc.GetChallenge(challenge.PublicID)
	if err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if record.RecipientScore == nil || *record.RecipientScore != 4 {
		t.Errorf("stored score = %v, want 4 (unchanged)", record.RecipientScore)
	}
}

func TestSubmitScoreBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	tests := []struct {
		name    string
		score   int
		wantErr error
	}{
		{name: "negative", score: -1, wantErr: ErrInvalidScore},
		{name: "above question count", score: 6, wantErr: ErrInvalidScore},
		{name: "zero", score: 0},
		{name: "full marks", score: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
			if err != nil {
				t.Fatalf("create challenge: %v", err)
			}
			_, _, err = svc.SubmitScore(challenge.PublicID, recipient.ID, tt.score)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("submit %d: %v", tt.score, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("submit %d: err = %v, want %v", tt.score, err, tt.wantErr)
			}
		})
	}
}

func TestFinalizationBothOrders(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	// Whichever participant submits second performs the single finalization.
	orders := []struct {
		name          string
		first, second uint
	}{
		{name: "challenger first", first: challenger.ID, second: recipient.ID},
		{name: "recipient first", first: recipient.ID, second: challenger.ID},
	}
	for _, order := range orders {
		t.Run(order.name, func(t *testing.T) {
			challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
			if err != nil {
				t.Fatalf("create challenge: %v", err)
			}

			_, isFinal, err := svc.SubmitScore(challenge.PublicID, order.first, 2)
			if err != nil {
				t.Fatalf("first submit: %v", err)
			}
			if isFinal {
				t.Error("first submission must not finalize")
			}

			record, isFinal, err := svc.SubmitScore(challenge.PublicID, order.second, 5)
			if err != nil {
				t.Fatalf("second submit: %v", err)
			}
			if !isFinal {
				t.Error("second submission must finalize")
			}
			wantWinner := strconv.FormatUint(uint64(order.second), 10)
			if record.Winner == nil || *record.Winner != wantWinner {
				t.Errorf("winner = %v, want %s", record.Winner, wantWinner)
			}

			// The completion transition already ran; any further submission
			// attempt must fail without touching the completed record.
			if _, _, err := svc.SubmitScore(challenge.PublicID, order.first, 5); !errors.Is(err, ErrAlreadyCompleted) {
				t.Errorf("post-completion submit: err = %v, want ErrAlreadyCompleted", err)
			}
			final, err := svc.GetChallenge(challenge.PublicID)
			if err != nil {
				t.Fatalf("get challenge: %v", err)
			}
			if final.CompletedAt == nil || !final.CompletedAt.Equal(*record.CompletedAt) {
				t.Error("completedAt must be written exactly once")
			}
		})
	}
}

func TestSubmitScoreConcurrentFinalization(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	// Both participants submit with overlapping timing, repeatedly. No
	// matter how the two transactions interleave, exactly one of them
	// performs the completion transition.
	const rounds = 20
	for round := 0; round < rounds; round++ {
		challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
		if err != nil {
			t.Fatalf("round %d: create challenge: %v", round, err)
		}

		type submission struct {
			isFinal bool
			err     error
		}
		results := make([]submission, 2)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, isFinal, err := svc.SubmitScore(challenge.PublicID, challenger.ID, 3)
			results[0] = submission{isFinal: isFinal, err: err}
		}()
		go func() {
			defer wg.Done()
			_, isFinal, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 4)
			results[1] = submission{isFinal: isFinal, err: err}
		}()
		wg.Wait()

		finalizations := 0
		for i, res := range results {
			if res.err != nil {
				t.Fatalf("round %d: submission %d failed: %v", round, i, res.err)
			}
			if res.isFinal {
				finalizations++
			}
		}
		if finalizations != 1 {
			t.Fatalf("round %d: %d finalizations, want exactly 1", round, finalizations)
		}

		record, err := svc.GetChallenge(challenge.PublicID)
		if err != nil {
			t.Fatalf("round %d: get challenge: %v", round, err)
		}
		if record.Status != models.ChallengeStatusCompleted {
			t.Fatalf("round %d: status = %q, want completed", round, record.Status)
		}
		if record.CompletedAt == nil {
			t.Fatalf("round %d: completedAt not set", round)
		}
		if record.ChallengerScore == nil || *record.ChallengerScore != 3 ||
			record.RecipientScore == nil || *record.RecipientScore != 4 {
			t.Fatalf("round %d: scores = %v/%v, want 3/4",
				round, record.ChallengerScore, record.RecipientScore)
		}
		wantWinner := strconv.FormatUint(uint64(recipient.ID), 10)
		if record.Winner == nil || *record.Winner != wantWinner {
			t.Fatalf("round %d: winner = %v, want %s", round, record.Winner, wantWinner)
		}
	}
}

func TestListChallenges(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	bystander := createUser(t, db, "carol")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID); err != nil {
			t.Fatalf("create challenge %d: %v", i, err)
		}
	}

	challenges, err := svc.ListChallenges(recipient.ID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 3 {
		t.Errorf("recipient sees %d challenges, want 3", len(challenges))
	}

	challenges, err = svc.ListChallenges(bystander.ID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 0 {
		t.Errorf("bystander sees %d challenges, want 0", len(challenges))
	}
}

func TestBadgeAwardedOnFirstWin(t *testing.T) {
	db := newTestDB(t)
	svc := NewChallengeService(db)

	badge := models.Badge{
		Name:        "First Victory",
		Description: "Win your first challenge",
		Category:    "Challenge",
		PointReward: 20,
	}
	if err := db.Create(&badge).Error; err != nil {
		t.Fatalf("seed badge: %v", err)
	}

	challenger := createUser(t, db, "alice")
	recipient := createUser(t, db, "bob")
	book, quizSet := createQuizSet(t, db, challenger.ID, 5)

	challenge, err := svc.CreateChallenge(challenger.ID, recipient.ID, book.ID, quizSet.ID)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	if _, _, err := svc.SubmitScore(challenge.PublicID, recipient.ID, 2); err != nil {
		t.Fatalf("recipient submit: %v", err)
	}
	if _, _, err := svc.SubmitScore(challenge.PublicID, challenger.ID, 5); err != nil {
		t.Fatalf("challenger submit: %v", err)
	}

	var earned int64
	db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", challenger.ID, badge.ID).
		Count(&earned)
	if earned != 1 {
		t.Errorf("winner badge count = %d, want 1", earned)
	}

	db.Model(&models.UserBadge{}).
		Where("user_id = ?", recipient.ID).
		Count(&earned)
	if earned != 0 {
		t.Errorf("loser badge count = %d, want 0", earned)
	}
}
