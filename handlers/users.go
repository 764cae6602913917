// handlers/users.go - User Profile & Stats Endpoints
package handlers

import (
	"strconv"
	"ustaadgpt/database"
	"ustaadgpt/middleware"
	"ustaadgpt/models"

	"github.com/gofiber/fiber/v2"
)

func GetCurrentUser(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	db := database.GetDB()
	var user models.User
	if err := db.Preload("Badges.Badge").First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

func UpdateCurrentUser(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)

	var req struct {
		DisplayName *string `json:"display_name"`
		Avatar      *string `json:"avatar"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	db := database.GetDB()
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
		}
	}
	return c.JSON(fiber.Map{"success": true})
}

func SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	db := database.GetDB()
	var users []models.User
	db.Where("username LIKE ? AND is_guest = ?", "%"+query+"%", false).Limit(20).Find(&users)
	return c.JSON(fiber.Map{"success": true, "users": users})
}

func GetUserProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	db := database.GetDB()
	var user models.User
	if err := db.Preload("Badges.Badge").First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetUserStats reports the authenticated user's aggregate challenge record
// plus derived accuracy over completed challenges
// GET /api/users/stats
func GetUserStats(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var completed int64
	db.Model(&models.Challenge{}).
		Where("(challenger_id = ? OR recipient_id = ?) AND status = ?",
			userID, userID, models.ChallengeStatusCompleted).
		Count(&completed)

	winRate := 0.0
	if completed > 0 {
		winRate = float64(user.Wins) / float64(completed)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": fiber.Map{
			"points":               user.Points,
			"total_challenges":     user.TotalChallenges,
			"completed_challenges": completed,
			"wins":                 user.Wins,
			"losses":               user.Losses,
			"draws":                user.Draws,
			"win_rate":             winRate,
			"current_streak":       user.CurrentStreak,
			"best_streak":          user.BestStreak,
		},
	})
}

// GetHeadToHead reports the authenticated user's record against one
// opponent, derived from the append-only challenge history
// GET /api/users/:id/head-to-head
func GetHeadToHead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	opponentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	db := database.GetDB()
	var challenges []models.Challenge
	if err := db.Where(
		"status = ? AND ((challenger_id = ? AND recipient_id = ?) OR (challenger_id = ? AND recipient_id = ?))",
		models.ChallengeStatusCompleted, userID, uint(opponentID), uint(opponentID), userID,
	).Order("completed_at DESC").Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to retrieve history"})
	}

	me := strconv.FormatUint(uint64(userID), 10)
	them := strconv.FormatUint(uint64(opponentID), 10)

	wins, losses, draws := 0, 0, 0
	for _, ch := range challenges {
		if ch.Winner == nil {
			continue
		}
		switch *ch.Winner {
		case me:
			wins++
		case them:
			losses++
		case models.WinnerDraw:
			draws++
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"wins":       wins,
		"losses":     losses,
		"draws":      draws,
		"challenges": challenges,
	})
}
