// handlers/leaderboard.go - Points Leaderboard
package handlers

import (
	"strconv"
	"ustaadgpt/database"
	"ustaadgpt/models"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the global leaderboard
// GET /api/leaderboard?category=points&limit=100&offset=0
func GetLeaderboard(c *fiber.Ctx) error {
	category := c.Query("category", "points")
	limit := clampInt(parseIntDefault(c.Query("limit"), 100), 1, 100)
	offset := maxInt(parseIntDefault(c.Query("offset"), 0), 0)

	var orderBy string
	switch category {
	case "points":
		orderBy = "points DESC, wins DESC, total_challenges ASC"
	case "wins":
		orderBy = "wins DESC, points DESC"
	case "streak":
		orderBy = "best_streak DESC, points DESC"
	default:
		orderBy = "points DESC, wins DESC, total_challenges ASC"
	}

	db := database.GetDB()
	var users []models.User
	if err := db.Where("is_guest = ?", false).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch leaderboard",
		})
	}

	entries := make([]fiber.Map, 0, len(users))
	for i, user := range users {
		entries = append(entries, fiber.Map{
			"rank":         offset + i + 1,
			"user_id":      user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar":       user.Avatar,
			"points":       user.Points,
			"wins":         user.Wins,
			"best_streak":  user.BestStreak,
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"category":    category,
		"leaderboard": entries,
	})
}

// GetUserRank returns a user's position on the points leaderboard
// GET /api/leaderboard/user/:id
func GetUserRank(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var ahead int64
	db.Model(&models.User{}).
		Where("is_guest = ? AND points > ?", false, user.Points).
		Count(&ahead)

	return c.JSON(fiber.Map{
		"success": true,
		"rank":    ahead + 1,
		"points":  user.Points,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
