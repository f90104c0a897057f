package meetings

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huddleai/huddle/internal/errs"
	"github.com/huddleai/huddle/internal/models"
)

// meetingResponse is the dashboard JSON shape for one meeting.
type meetingResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	AgentID       string     `json:"agent_id,omitempty"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	TranscriptURL string     `json:"transcript_url,omitempty"`
	RecordingURL  string     `json:"recording_url,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	DurationMs    *int64     `json:"duration_ms,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toResponse(m *models.Meeting) meetingResponse {
	resp := meetingResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		AgentID:       m.AgentID,
		Name:          m.Name,
		Status:        m.Status,
		StartedAt:     m.StartedAt,
		EndedAt:       m.EndedAt,
		TranscriptURL: m.TranscriptURL,
		RecordingURL:  m.RecordingURL,
		Summary:       m.Summary,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if d := m.Duration(); d > 0 {
		ms := d.Milliseconds()
		resp.DurationMs = &ms
	}
	return resp
}

// RegisterRoutes mounts the dashboard meeting endpoints on r.
func RegisterRoutes(r gin.IRouter, store *Store) {
	r.GET("/meetings", ListHandler(store))
	r.POST("/meetings", CreateHandler(store))
	r.GET("/meetings/:id", GetHandler(store))
	r.PATCH("/meetings/:id", UpdateHandler(store))
	r.POST("/meetings/:id/cancel", CancelHandler(store))
	r.DELETE("/meetings/:id", DeleteHandler(store))
}

// ListHandler returns a filtered, paginated meeting list.
func ListHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

		params := ListParams{
			UserID:   c.Query("user_id"),
			Search:   c.Query("search"),
			Status:   c.Query("status"),
			AgentID:  c.Query("agent_id"),
			Page:     page,
			PageSize: pageSize,
		}

		items, total, err := store.List(c.Request.Context(), params)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": "failed to list meetings"})
			return
		}

		responses := make([]meetingResponse, len(items))
		for i := range items {
			responses[i] = toResponse(&items[i])
		}

		totalPages := (total + int64(params.PageSize) - 1) / int64(params.PageSize)
		c.JSON(http.StatusOK, gin.H{
			"meetings": responses,
			"pagination": gin.H{
				"page":        params.Page,
				"page_size":   params.PageSize,
				"total":       total,
				"total_pages": totalPages,
			},
		})
	}
}

type createMeetingRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	AgentID string `json:"agent_id"`
	Name    string `json:"name" binding:"required"`
}

// CreateHandler creates a meeting in the upcoming state.
func CreateHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMeetingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		meeting := models.Meeting{
			UserID:  req.UserID,
			AgentID: req.AgentID,
			Name:    req.Name,
			Status:  models.MeetingStatusUpcoming,
		}

		if err := store.Create(c.Request.Context(), &meeting); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create meeting"})
			return
		}

		c.JSON(http.StatusCreated, toResponse(&meeting))
	}
}

// GetHandler returns one meeting.
func GetHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		meeting, err := store.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toResponse(meeting))
	}
}

type updateMeetingRequest struct {
	Name    string `json:"name"`
	AgentID string `json:"agent_id"`
}

// UpdateHandler changes a meeting's name or agent.
func UpdateHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateMeetingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		meeting, err := store.Update(c.Request.Context(), c.Param("id"), req.Name, req.AgentID)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toResponse(meeting))
	}
}

// CancelHandler cancels an upcoming meeting. Cancelling a meeting that
// already started is a conflict, not a silent no-op, because the request
// came from a user, not from webhook redelivery.
func CancelHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		cancelled, err := store.Cancel(c.Request.Context(), id)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		if !cancelled {
			c.JSON(http.StatusConflict, gin.H{"error": "meeting already started"})
			return
		}

		meeting, err := store.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toResponse(meeting))
	}
}

// DeleteHandler removes a meeting.
func DeleteHandler(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
