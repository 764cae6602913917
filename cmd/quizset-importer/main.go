package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ustaadgpt/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// JSONBook is the on-disk layout of a pre-generated content file under
// ./content: one book with its quiz sets and flashcards.
type JSONBook struct {
	Title         string `json:"title"`
	SourceName    string `json:"source_name"`
	Summary       string `json:"summary"`
	OwnerUsername string `json:"owner_username"`
	QuizSets      []struct {
		Title     string `json:"title"`
		Questions []struct {
			Text         string   `json:"text"`
			Options      []string `json:"options"`
			CorrectIndex int      `json:"correct_index"`
		} `json:"questions"`
	} `json:"quiz_sets"`
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

func main() {
	db, err := openDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.QuizSet{},
		&models.Question{}, &models.Flashcard{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	files, err := filepath.Glob("./content/*.json")
	if err != nil || len(files) == 0 {
		log.Fatal("No content files found in ./content")
	}

	fmt.Printf("Found %d content files\n\n", len(files))

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("%s: read error: %v", f, err)
		}

		var jsonBook JSONBook
		if err := json.Unmarshal(data, &jsonBook); err != nil {
			log.Fatalf("%s: parse error: %v", f, err)
		}

		fmt.Printf("Processing: %s\n", jsonBook.Title)
		if err := importBook(db, &jsonBook); err != nil {
			log.Fatalf("%s: import error: %v", f, err)
		}
	}

	fmt.Println("\nImport complete")
}

func openDB() (*gorm.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open("./data/ustaadgpt.db"), &gorm.Config{})
}

func importBook(db *gorm.DB, jsonBook *JSONBook) error {
	username := jsonBook.OwnerUsername
	if username == "" {
		username = "importer"
	}

	var owner models.User
	err := db.Where(models.User{Username: username}).
		Attrs(models.User{CreatedAt: time.Now()}).
		FirstOrCreate(&owner).Error
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		book := models.Book{
			UserID:     owner.ID,
			Title:      jsonBook.Title,
			SourceName: jsonBook.SourceName,
			Summary:    jsonBook.Summary,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(&book).Error; err != nil {
			return err
		}

		for _, set := range jsonBook.QuizSets {
			quizSet := models.QuizSet{
				BookID:    book.ID,
				Title:     set.Title,
				CreatedAt: time.Now(),
			}
			for _, q := range set.Questions {
				options, err := json.Marshal(q.Options)
				if err != nil {
					return err
				}
				quizSet.Questions = append(quizSet.Questions, models.Question{
					Text:         q.Text,
					Options:      string(options),
					CorrectIndex: q.CorrectIndex,
					CreatedAt:    time.Now(),
				})
			}
			if err := tx.Create(&quizSet).Error; err != nil {
				return err
			}
			fmt.Printf("  quiz set %q: %d questions\n", set.Title, len(set.Questions))
		}

		for _, card := range jsonBook.Flashcards {
			flashcard := models.Flashcard{
				BookID:    book.ID,
				Front:     card.Front,
				Back:      card.Back,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&flashcard).Error; err != nil {
				return err
			}
		}
		if len(jsonBook.Flashcards) > 0 {
			fmt.Printf("  %d flashcards\n", len(jsonBook.Flashcards))
		}

		return nil
	})
}
