package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rubyruby/relay/internal/middleware"
	"github.com/rubyruby/relay/internal/repository"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

func NewContactHandler(contactRepo repository.ContactRepository, userRepo repository.UserRepository, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactRepo: contactRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

type addContactRequest struct {
	Contact string `json:"contact" binding:"required"`
}

// Add handles POST /v1/contacts — the caller adds a contact to their own
// list. Idempotent: re-adding an existing contact succeeds silently.
func (h *ContactHandler) Add(c *gin.Context) {
	var req addContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	owner := middleware.GetUsername(c)

	// The contact has to be a real account; a typo'd username would
	// otherwise sit in the list forever with no one behind it.
	user, err := h.userRepo.GetByUsername(c.Request.Context(), req.Contact)
	if err != nil {
		h.logger.Error("failed to look up contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add contact"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}

	if err := h.contactRepo.Add(c.Request.Context(), owner, req.Contact); err != nil {
		h.logger.Error("failed to add contact", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add contact"})
		return
	}

	c.Status(http.StatusNoContent)
}

// List handles GET /v1/contacts
func (h *ContactHandler) List(c *gin.Context) {
	owner := middleware.GetUsername(c)

	contacts, err := h.contactRepo.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list contacts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}
