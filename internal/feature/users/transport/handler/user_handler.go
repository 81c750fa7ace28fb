// Package handler provides HTTP handlers for the admin user directory.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/transport/http/dto"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

// DirectoryUsecase is the read and soft-delete side of user records.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type DirectoryUsecase interface {
	List(ctx context.Context, rawRole string, page pagination.Page) ([]entity.User, pagination.Meta, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	SoftDelete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (map[identity.Role]int64, error)
}

// UserHandler serves /users.
type UserHandler struct {
	directory DirectoryUsecase
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(directory DirectoryUsecase) *UserHandler {
	return &UserHandler{directory: directory}
}

// List handles GET /users?page=&limit=&role=.
func (h *UserHandler) List(c *gin.Context) {
	page, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	users, meta, err := h.directory.List(c.Request.Context(), c.Query("role"), page)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserListResponse(users, meta))
}

// CountByRole handles GET /users/count-by-role.
func (h *UserHandler) CountByRole(c *gin.Context) {
	counts, err := h.directory.CountByRole(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make(map[string]int64, len(counts))
	for role, n := range counts {
		out[role.String()] = n
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.directory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.directory.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "User deleted successfully")
}
