package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Alphonse-K/freres-unis/domain"
)

// RoleHandlers manages the role catalog, permission grants and role
// assignment.
type RoleHandlers struct {
	roleSvc domain.RoleService
}

// NewRoleHandlers creates new role handlers.
func NewRoleHandlers(roleSvc domain.RoleService) *RoleHandlers {
	return &RoleHandlers{roleSvc: roleSvc}
}

// RoleRequest names a role.
type RoleRequest struct {
	Name string `json:"name" binding:"required"`
}

// SetPermissionsRequest replaces a role's permission grant.
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// AssignRolesRequest replaces an account's role set.
type AssignRolesRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required"`
}

// Create handles POST /roles.
func (h *RoleHandlers) Create(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": role})
}

// List handles GET /roles.
func (h *RoleHandlers) List(c *gin.Context) {
	roles, err := h.roleSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list roles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": roles})
}

// Get handles GET /roles/:id, including the role's permission grant.
func (h *RoleHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	role, err := h.roleSvc.Get(c.Request.Context(), id)
	if err != nil {
		writeRoleError(c, err)
		return
	}
	perms, err := h.roleSvc.PermissionsOf(c.Request.Context(), role.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":          role.ID,
		"name":        role.Name,
		"permissions": perms,
	}})
}

// Rename handles PUT /roles/:id.
func (h *RoleHandlers) Rename(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleSvc.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		writeRoleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": role})
}

// Delete handles DELETE /roles/:id.
func (h *RoleHandlers) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.roleSvc.Delete(c.Request.Context(), id); err != nil {
		writeRoleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Role deleted"}})
}

// SetPermissions handles PUT /roles/:id/permissions.
func (h *RoleHandlers) SetPermissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roleSvc.SetPermissions(c.Request.Context(), id, req.Permissions); err != nil {
		if errors.Is(err, domain.ErrUnknownPermission) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeRoleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Permissions updated"}})
}

// Permissions handles GET /permissions: the full catalog routes and API
// keys may draw from.
func (h *RoleHandlers) Permissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": domain.AllPermissions()})
}

// AssignRoles handles PUT /accounts/:kind/:id/roles.
func (h *RoleHandlers) AssignRoles(c *gin.Context) {
	kind := domain.AccountKind(c.Param("kind"))
	switch kind {
	case domain.AccountKindStaff, domain.AccountKindPOS, domain.AccountKindClient:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account type"})
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roleSvc.AssignRoles(c.Request.Context(), kind, id, req.RoleIDs); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		writeRoleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Roles assigned"}})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func writeRoleError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrRoleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
}
