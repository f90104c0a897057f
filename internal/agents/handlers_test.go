package agents

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Agent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	router := gin.New()
	RegisterRoutes(router, db)
	return router, db
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateAgent(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/agents", gin.H{
		"user_id":      "u1",
		"name":         "Note Taker",
		"instructions": "Take notes quietly and summarize at the end.",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var agent models.Agent
	if err := json.Unmarshal(rr.Body.Bytes(), &agent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if agent.ID == "" {
		t.Error("expected generated agent id")
	}
	if agent.Name != "Note Taker" {
		t.Errorf("unexpected name: %s", agent.Name)
	}
}

func TestCreateAgentRequiresInstructions(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/agents", gin.H{
		"user_id": "u1",
		"name":    "Incomplete",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestGetAgent(t *testing.T) {
	router, db := newTestRouter(t)
	if err := db.Create(&models.Agent{ID: "a1", UserID: "u1", Name: "Note Taker", Instructions: "take notes"}).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}

	rr := doRequest(t, router, http.MethodGet, "/agents/a1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/agents/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateAgent(t *testing.T) {
	router, db := newTestRouter(t)
	if err := db.Create(&models.Agent{ID: "a1", UserID: "u1", Name: "Note Taker", Instructions: "take notes"}).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}

	rr := doRequest(t, router, http.MethodPatch, "/agents/a1", gin.H{"instructions": "be more detailed"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var agent models.Agent
	if err := db.First(&agent, "id = ?", "a1").Error; err != nil {
		t.Fatalf("fetch agent: %v", err)
	}
	if agent.Instructions != "be more detailed" {
		t.Errorf("unexpected instructions: %s", agent.Instructions)
	}
	if agent.Name != "Note Taker" {
		t.Errorf("name should be unchanged, got %s", agent.Name)
	}
}

func TestDeleteAgent(t *testing.T) {
	router, db := newTestRouter(t)
	if err := db.Create(&models.Agent{ID: "a1", UserID: "u1", Name: "Note Taker", Instructions: "take notes"}).Error; err != nil {
		t.Fatalf("create agent: %v", err)
	}

	rr := doRequest(t, router, http.MethodDelete, "/agents/a1", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodDelete, "/agents/a1", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for second delete, got %d", rr.Code)
	}
}

func TestListAgentsByOwner(t *testing.T) {
	router, db := newTestRouter(t)
	if err := db.Create(&models.User{ID: "u2", Name: "Bob", Email: "bob@example.com"}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, a := range []models.Agent{
		{ID: "a1", UserID: "u1", Name: "Note Taker", Instructions: "x"},
		{ID: "a2", UserID: "u1", Name: "Facilitator", Instructions: "x"},
		{ID: "a3", UserID: "u2", Name: "Coach", Instructions: "x"},
	} {
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("create agent: %v", err)
		}
	}

	rr := doRequest(t, router, http.MethodGet, "/agents?user_id=u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Agents     []models.Agent `json:"agents"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Pagination.Total != 2 {
		t.Errorf("expected 2 agents for u1, got %d", resp.Pagination.Total)
	}
}
