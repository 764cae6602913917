// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"ustaadgpt/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Println("✅ All migrations completed successfully")
}

// Migrate creates all tables and indexes on the given database. Split out
// from RunMigrations so tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Book{},
		&models.QuizSet{},
		&models.Question{},
		&models.Flashcard{},
		&models.Friend{},
		&models.FriendRequest{},
		&models.Challenge{},
	); err != nil {
		return err
	}

	createIndexes(db)
	return nil
}

// createIndexes creates indexes beyond what AutoMigrate declares
func createIndexes(db *gorm.DB) {
	log.Println("Creating indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)")

	// Content indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_books_user ON books(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_quiz_sets_book ON quiz_sets(book_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_questions_quiz_set ON questions(quiz_set_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_flashcards_book ON flashcards(book_id)")

	// Challenge indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_public_id ON challenges(public_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_challenger ON challenges(challenger_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_recipient ON challenges(recipient_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_status ON challenges(status)")

	// Social indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_friends_user ON friends(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_user_id, status)")
}
