// handlers/friends.go - Friend System Endpoints
package handlers

import (
	"time"
	"ustaadgpt/database"
	"ustaadgpt/middleware"
	"ustaadgpt/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetFriends(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	db := database.GetDB()
	var friends []models.Friend
	db.Preload("Friend").Where("user_id = ?", userID).Find(&friends)
	return c.JSON(fiber.Map{"success": true, "friends": friends})
}

func GetFriendRequests(c *fiber.Ctx) error {
	userID, _ := middleware.GetUserID(c)
	db := database.GetDB()
	var requests []models.FriendRequest
	db.Preload("FromUser").Where("to_user_id = ? AND status = ?", userID, "pending").Find(&requests)
	return c.JSON(fiber.Map{"success": true, "requests": requests})
}

// SendFriendRequest creates a pending request to another user
// POST /api/friends/request
func SendFriendRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Target user ID is required",
		})
	}

	if req.UserID == userID {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Cannot friend yourself",
		})
	}

	db := database.GetDB()
	var target models.User
	if err := db.First(&target, req.UserID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "User not found",
		})
	}

	var existing int64
	db.Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", userID, req.UserID).
		Count(&existing)
	if existing > 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Already friends",
		})
	}

	var pending int64
	db.Model(&models.FriendRequest{}).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", userID, req.UserID, "pending").
		Count(&pending)
	if pending > 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Request already sent",
		})
	}

	request := &models.FriendRequest{
		FromUserID: userID,
		ToUserID:   req.UserID,
		Status:     "pending",
		CreatedAt:  time.Now(),
	}
	if err := db.Create(request).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to send friend request",
		})
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

// AcceptFriendRequest accepts a pending request addressed to the caller
// and creates the friendship in both directions
// POST /api/friends/accept
func AcceptFriendRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req struct {
		RequestID uint `json:"request_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.RequestID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Request ID is required",
		})
	}

	db := database.GetDB()
	var request models.FriendRequest
	if err := db.Where("id = ? AND to_user_id = ? AND status = ?", req.RequestID, userID, "pending").
		First(&request).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   "Friend request not found",
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("status", "accepted").Error; err != nil {
			return err
		}
		now := time.Now()
		friendships := []models.Friend{
			{UserID: request.FromUserID, FriendID: request.ToUserID, CreatedAt: now},
			{UserID: request.ToUserID, FriendID: request.FromUserID, CreatedAt: now},
		}
		return tx.Create(&friendships).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to accept friend request",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Friend request accepted",
	})
}
