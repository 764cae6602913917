// handlers/books.go - Study Content Endpoints (books, quiz sets, flashcards)
package handlers

import (
	"encoding/json"
	"strconv"
	"time"
	"ustaadgpt/database"
	"ustaadgpt/middleware"
	"ustaadgpt/models"

	"github.com/gofiber/fiber/v2"
)

// CreateBook registers a study document and its pre-generated material
// POST /api/books
func CreateBook(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Title      string `json:"title"`
		SourceName string `json:"source_name"`
		Summary    string `json:"summary"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Book title is required",
		})
	}

	book := &models.Book{
		UserID:     userID,
		Title:      req.Title,
		SourceName: req.SourceName,
		Summary:    req.Summary,
		CreatedAt:  time.Now(),
	}

	db := database.GetDB()
	if err := db.Create(book).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create book",
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"book":    book,
	})
}

// GetBooks lists the authenticated user's books
// GET /api/books
func GetBooks(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var books []models.Book
	if err := db.Where("user_id = ?", userID).
		Preload("QuizSets").
		Order("created_at DESC").
		Find(&books).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to retrieve books",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"books":   books,
		"count":   len(books),
	})
}

// GetBook retrieves one of the user's books with its material
// GET /api/books/:id
func GetBook(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid book ID",
		})
	}

	db := database.GetDB()
	var book models.Book
	if err := db.Where("id = ? AND user_id = ?", uint(bookID), userID).
		Preload("QuizSets").
		Preload("Flashcards").
		First(&book).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Book not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"book":    book,
	})
}

// CreateQuizSet stores a generated question set under one of the user's
// books. Quiz sets are immutable once created: challenges reference them
// by id for their whole lifetime.
// POST /api/books/:id/quizsets
func CreateQuizSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid book ID",
		})
	}

	var req struct {
		Title     string `json:"title"`
		Questions []struct {
			Text         string   `json:"text"`
			Options      []string `json:"options"`
			CorrectIndex int      `json:"correct_index"`
		} `json:"questions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if req.Title == "" || len(req.Questions) == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Quiz set title and questions are required",
		})
	}

	for _, q := range req.Questions {
		if q.Text == "" || len(q.Options) < 2 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return c.Status(400).JSON(fiber.Map{
				"success": false,
				"error":   "Each question needs text, at least 2 options and a valid correct index",
			})
		}
	}

	db := database.GetDB()
	var book models.Book
	if err := db.Where("id = ? AND user_id = ?", uint(bookID), userID).First(&book).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Book not found",
		})
	}

	quizSet := &models.QuizSet{
		BookID:    book.ID,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}
	for _, q := range req.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid question options",
			})
		}
		quizSet.Questions = append(quizSet.Questions, models.Question{
			Text:         q.Text,
			Options:      string(options),
			CorrectIndex: q.CorrectIndex,
			CreatedAt:    time.Now(),
		})
	}

	if err := db.Create(quizSet).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create quiz set",
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"quiz_set": quizSet,
	})
}

// GetQuizSet retrieves a quiz set. The answer key is only included for
// the owner; everyone else gets the play view.
// GET /api/quizsets/:id
func GetQuizSet(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	quizSetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid quiz set ID",
		})
	}

	quizSet, err := quizService.GetQuizSet(uint(quizSetID))
	if err != nil {
		return challengeError(c, err)
	}

	db := database.GetDB()
	var book models.Book
	if err := db.First(&book, quizSet.BookID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Book not found",
		})
	}

	if book.UserID == userID {
		return c.JSON(fiber.Map{
			"success":  true,
			"quiz_set": quizSet,
		})
	}

	questions, err := quizService.PlayQuestions(quizSet.ID)
	if err != nil {
		return challengeError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quiz_set": fiber.Map{
			"id":         quizSet.ID,
			"book_id":    quizSet.BookID,
			"title":      quizSet.Title,
			"created_at": quizSet.CreatedAt,
			"questions":  questions,
		},
	})
}

// CreateFlashcards bulk-adds flashcards to one of the user's books
// POST /api/books/:id/flashcards
func CreateFlashcards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid book ID",
		})
	}

	var req struct {
		Cards []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"cards"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Cards) == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "At least one flashcard is required",
		})
	}

	db := database.GetDB()
	var book models.Book
	if err := db.Where("id = ? AND user_id = ?", uint(bookID), userID).First(&book).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Book not found",
		})
	}

	cards := make([]models.Flashcard, 0, len(req.Cards))
	for _, card := range req.Cards {
		if card.Front == "" || card.Back == "" {
			return c.Status(400).JSON(fiber.Map{
				"success": false,
				"error":   "Flashcards need both a front and a back",
			})
		}
		cards = append(cards, models.Flashcard{
			BookID:    book.ID,
			Front:     card.Front,
			Back:      card.Back,
			CreatedAt: time.Now(),
		})
	}

	if err := db.Create(&cards).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create flashcards",
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"cards":   cards,
		"count":   len(cards),
	})
}

// GetFlashcards lists a book's flashcards for review
// GET /api/books/:id/flashcards
func GetFlashcards(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	bookID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid book ID",
		})
	}

	db := database.GetDB()
	var book models.Book
	if err := db.Where("id = ? AND user_id = ?", uint(bookID), userID).First(&book).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Book not found",
		})
	}

	var cards []models.Flashcard
	if err := db.Where("book_id = ?", book.ID).Order("id ASC").Find(&cards).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to retrieve flashcards",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"cards":   cards,
		"count":   len(cards),
	})
}
