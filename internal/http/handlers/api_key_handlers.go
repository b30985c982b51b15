package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
	"github.com/Alphonse-K/freres-unis/internal/http/middleware"
)

// APIKeyHandlers manages machine-to-machine credentials. Only staff
// accounts may manage keys; the key is scoped to the staff user's company.
type APIKeyHandlers struct {
	apiKeySvc domain.APIKeyService
}

// NewAPIKeyHandlers creates new API key handlers.
func NewAPIKeyHandlers(apiKeySvc domain.APIKeyService) *APIKeyHandlers {
	return &APIKeyHandlers{apiKeySvc: apiKeySvc}
}

// CreateAPIKeyRequest creates a key with an inline permission grant.
type CreateAPIKeyRequest struct {
	Name        string     `json:"name" binding:"required"`
	Permissions []string   `json:"permissions" binding:"required"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Create mints a new key pair. The secret appears in this response and is
// never shown again.
func (h *APIKeyHandlers) Create(c *gin.Context) {
	staff, ok := staffFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only staff accounts may manage API keys"})
		return
	}

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key, err := h.apiKeySvc.Create(c.Request.Context(), staff.CompanyID, req.Name, req.Permissions, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPermission) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": key})
}

// List returns the company's keys, hashed secrets excluded.
func (h *APIKeyHandlers) List(c *gin.Context) {
	staff, ok := staffFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only staff accounts may manage API keys"})
		return
	}

	keys, err := h.apiKeySvc.List(c.Request.Context(), staff.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list API keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": keys})
}

// Revoke deactivates a key belonging to the caller's company.
func (h *APIKeyHandlers) Revoke(c *gin.Context) {
	staff, ok := staffFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only staff accounts may manage API keys"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid API key id"})
		return
	}

	if err := h.apiKeySvc.Revoke(c.Request.Context(), uint(id), staff.CompanyID); err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "API key revoked"}})
}

func staffFrom(c *gin.Context) (*domain.StaffUser, bool) {
	account, ok := middleware.AccountFrom(c)
	if !ok {
		return nil, false
	}
	staff, ok := account.(*domain.StaffUser)
	return staff, ok
}
