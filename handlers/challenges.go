// handlers/challenges.go - Quiz Challenge Endpoints
package handlers

import (
	"errors"
	"ustaadgpt/database"
	"ustaadgpt/middleware"
	"ustaadgpt/services"

	"github.com/gofiber/fiber/v2"
)

var (
	challengeService *services.ChallengeService
	quizService      *services.QuizService
)

// InitChallengeHandlers initializes the challenge and quiz services
func InitChallengeHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitChallengeHandlers")
	}
	challengeService = services.NewChallengeService(db)
	quizService = services.NewQuizService(db)
}

// challengeError maps service errors to HTTP responses
func challengeError(c *fiber.Ctx, err error) error {
	status := 500
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = 404
	case errors.Is(err, services.ErrForbidden):
		status = 403
	case errors.Is(err, services.ErrAlreadyCompleted):
		status = 409
	case errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrInvalidParticipants):
		status = 400
	}

	message := err.Error()
	if status == 500 {
		message = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// CreateChallenge creates a new challenge against another user
// POST /api/challenges
func CreateChallenge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		RecipientID uint `json:"recipient_id"`
		BookID      uint `json:"book_id"`
		QuizSetID   uint `json:"quiz_set_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	challenge, err := challengeService.CreateChallenge(userID, req.RecipientID, req.BookID, req.QuizSetID)
	if err != nil {
		return challengeError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success":   true,
		"challenge": challenge,
	})
}

// GetChallenges lists the authenticated user's challenge history
// GET /api/challenges
func GetChallenges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challenges, err := challengeService.ListChallenges(userID)
	if err != nil {
		return challengeError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"challenges": challenges,
		"count":      len(challenges),
	})
}

// GetChallenge retrieves a single challenge
// GET /api/challenges/:id
func GetChallenge(c *fiber.Ctx) error {
	challenge, err := challengeService.GetChallenge(c.Params("id"))
	if err != nil {
		return challengeError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"challenge": challenge,
	})
}

// EnterChallenge marks the authenticated participant as having opened the
// quiz and returns the questions to play, with answers stripped
// POST /api/challenges/:id/enter
func EnterChallenge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challenge, err := challengeService.EnterChallenge(c.Params("id"), userID)
	if err != nil {
		return challengeError(c, err)
	}

	questions, err := quizService.PlayQuestions(challenge.QuizSetID)
	if err != nil {
		return challengeError(c, err)
	}

	PublishChallengeUpdate(challenge)

	return c.JSON(fiber.Map{
		"success":   true,
		"challenge": challenge,
		"questions": questions,
	})
}

// SubmitScore records the authenticated participant's score; the second
// submission finalizes the challenge
// POST /api/challenges/:id/submit
func SubmitScore(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		Score int `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	challenge, isFinal, err := challengeService.SubmitScore(c.Params("id"), userID, req.Score)
	if err != nil {
		return challengeError(c, err)
	}

	PublishChallengeUpdate(challenge)

	return c.JSON(fiber.Map{
		"success":   true,
		"challenge": challenge,
		"is_final":  isFinal,
	})
}
