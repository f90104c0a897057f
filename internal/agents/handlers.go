// Package agents holds the dashboard CRUD handlers for AI agent
// configurations.
package agents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
)

// RegisterRoutes mounts the dashboard agent endpoints on r.
func RegisterRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/agents", ListHandler(db))
	r.POST("/agents", CreateHandler(db))
	r.GET("/agents/:id", GetHandler(db))
	r.PATCH("/agents/:id", UpdateHandler(db))
	r.DELETE("/agents/:id", DeleteHandler(db))
}

// ListHandler returns a paginated agent list, optionally filtered by owner
// and name search.
func ListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		query := db.WithContext(c.Request.Context()).Model(&models.Agent{})
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID)
		}
		if search := c.Query("search"); search != "" {
			query = query.Where("name ILIKE ?", "%"+search+"%")
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count agents"})
			return
		}

		var agents []models.Agent
		if err := query.Order("created_at DESC").Limit(pageSize).Offset((page - 1) * pageSize).Find(&agents).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list agents"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"agents": agents,
			"pagination": gin.H{
				"page":      page,
				"page_size": pageSize,
				"total":     total,
			},
		})
	}
}

type createAgentRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Instructions string `json:"instructions" binding:"required"`
}

// CreateHandler creates an agent.
func CreateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		agent := models.Agent{
			UserID:       req.UserID,
			Name:         req.Name,
			Instructions: req.Instructions,
		}

		if err := db.WithContext(c.Request.Context()).Create(&agent).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
			return
		}

		c.JSON(http.StatusCreated, agent)
	}
}

// GetHandler returns one agent.
func GetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var agent models.Agent
		if err := db.WithContext(c.Request.Context()).First(&agent, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch agent"})
			return
		}
		c.JSON(http.StatusOK, agent)
	}
}

type updateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// UpdateHandler changes an agent's name or instructions.
func UpdateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Instructions != "" {
			updates["instructions"] = req.Instructions
		}

		if len(updates) > 0 {
			res := db.WithContext(c.Request.Context()).Model(&models.Agent{}).Where("id = ?", c.Param("id")).Updates(updates)
			if res.Error != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update agent"})
				return
			}
			if res.RowsAffected == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
		}

		var agent models.Agent
		if err := db.WithContext(c.Request.Context()).First(&agent, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
			return
		}
		c.JSON(http.StatusOK, agent)
	}
}

// DeleteHandler removes an agent.
func DeleteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.WithContext(c.Request.Context()).Delete(&models.Agent{}, "id = ?", c.Param("id"))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete agent"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
