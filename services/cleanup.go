// services/cleanup.go - Background guest-account cleanup
package services

import (
	"log"
	"os"
	"strconv"
	"time"
	"ustaadgpt/database"
	"ustaadgpt/models"
)

// CleanupService periodically removes stale guest accounts that never
// played a challenge. Challenge records are never touched: the app keeps
// them as append-only history with no expiry.
type CleanupService struct {
	interval time.Duration
	maxAge   time.Duration
	stop     chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service and starts
// its worker unless disabled via GUEST_CLEANUP_ENABLED=false.
func InitCleanupService() {
	cleanupService = &CleanupService{
		interval: envDuration("GUEST_CLEANUP_INTERVAL_HOURS", 24),
		maxAge:   envDuration("GUEST_CLEANUP_MAX_AGE_HOURS", 24*30),
		stop:     make(chan struct{}),
	}

	if os.Getenv("GUEST_CLEANUP_ENABLED") == "false" {
		log.Println("Guest cleanup disabled")
		return
	}
	cleanupService.Start()
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start launches the background cleanup worker.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.CleanupStaleGuests(); err != nil {
					log.Printf("Guest cleanup failed: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
	log.Printf("🧹 Guest cleanup running every %s (max age %s)", s.interval, s.maxAge)
}

// Stop stops the cleanup worker.
func (s *CleanupService) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// CleanupStaleGuests deletes guest users inactive for longer than maxAge
// that appear in no challenge. Guests with challenge history stay so that
// completed records keep resolving to a real participant row.
func (s *CleanupService) CleanupStaleGuests() error {
	db := database.GetDB()
	cutoff := time.Now().Add(-s.maxAge)

	res := db.Where(
		"is_guest = ? AND last_activity < ? AND id NOT IN (SELECT challenger_id FROM challenges) AND id NOT IN (SELECT recipient_id FROM challenges)",
		true, cutoff,
	).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("✅ Cleaned up %d stale guest accounts", res.RowsAffected)
	}
	return nil
}

func envDuration(key string, defaultHours int) time.Duration {
	hours := defaultHours
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	return time.Duration(hours) * time.Hour
}
