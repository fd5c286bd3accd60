package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/middleware"
	"github.com/rubyruby/relay/internal/repository"
	"go.uber.org/zap"
)

type GroupHandler struct {
	repo   repository.GroupRepository
	logger *zap.Logger
}

func NewGroupHandler(repo repository.GroupRepository, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{repo: repo, logger: logger}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

// Create handles POST /v1/groups — the caller becomes the first member.
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := middleware.GetUsername(c)

	group, err := h.repo.Create(c.Request.Context(), req.Name, owner)
	if err != nil {
		h.logger.Error("failed to create group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group_id": group.ID, "name": group.Name})
}

// Join handles POST /v1/groups/:id/join — self-join, idempotent.
func (h *GroupHandler) Join(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	username := middleware.GetUsername(c)

	if err := h.repo.Join(c.Request.Context(), groupID, username); err != nil {
		h.logger.Error("failed to join group", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join group"})
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /v1/groups — groups the caller belongs to.
func (h *GroupHandler) List(c *gin.Context) {
	username := middleware.GetUsername(c)

	groups, err := h.repo.GroupsOf(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("failed to list groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// Members handles GET /v1/groups/:id/members
func (h *GroupHandler) Members(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	members, err := h.repo.Members(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
