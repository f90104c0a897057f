package database

import (
	"log"

	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	// Check if seed data already exists
	var existingUser models.User
	result := db.Where("email = ?", "dev@huddle.local").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	// Create test user
	user := models.User{
		ID:    "dev-user-1",
		Name:  "Dev User",
		Email: "dev@huddle.local",
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	// Create a sample agent
	agent := models.Agent{
		ID:           "dev-agent-1",
		UserID:       user.ID,
		Name:         "Note Taker",
		Instructions: "You are a silent meeting participant. Take notes, answer direct questions briefly, and never interrupt.",
	}

	if err := db.Create(&agent).Error; err != nil {
		return err
	}

	// Create an upcoming meeting ready to receive webhook events
	upcoming := models.Meeting{
		UserID:  user.ID,
		AgentID: agent.ID,
		Name:    "Weekly Sync",
		Status:  models.MeetingStatusUpcoming,
	}

	if err := db.Create(&upcoming).Error; err != nil {
		return err
	}

	// Create a completed meeting with a summary, for the dashboard views
	completed := models.Meeting{
		UserID:  user.ID,
		AgentID: agent.ID,
		Name:    "Kickoff",
		Status:  models.MeetingStatusCompleted,
		Summary: "The team agreed on the initial project scope and assigned owners for the first milestone.",
	}

	if err := db.Create(&completed).Error; err != nil {
		return err
	}

	log.Println("Seed data created successfully")
	return nil
}
