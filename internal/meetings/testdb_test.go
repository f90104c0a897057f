package meetings

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Agent{}, &models.Meeting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return db
}

func createMeeting(t *testing.T, db *gorm.DB, id, status string) {
	t.Helper()
	m := models.Meeting{
		ID:      id,
		UserID:  "u1",
		AgentID: "a1",
		Name:    "Test Meeting",
		Status:  status,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("create meeting: %v", err)
	}
}

func meetingStatus(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	var m models.Meeting
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	return m.Status
}

func fetchMeeting(t *testing.T, db *gorm.DB, id string) models.Meeting {
	t.Helper()
	var m models.Meeting
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		t.Fatalf("fetch meeting: %v", err)
	}
	return m
}

var testCtx = context.Background()
