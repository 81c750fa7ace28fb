// Package handler provides HTTP handlers for opportunities and the organizer and player views of them.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/middleware"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/transport/http/dto"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

// LifecycleUsecase is everything the opportunity routes need.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type LifecycleUsecase interface {
	List(ctx context.Context, actor identity.Principal, rawStatus string, page pagination.Page) ([]entity.View, pagination.Meta, error)
	Get(ctx context.Context, actor identity.Principal, id string) (*entity.View, error)
	Count(ctx context.Context, rawStatus string) (int64, error)
	Create(ctx context.Context, actor identity.Principal, in usecase.CreateInput) (*entity.View, error)
	SetStatus(ctx context.Context, actor identity.Principal, id, rawStatus string) error

	OrganizerOpportunities(ctx context.Context, actor identity.Principal, organizerID string, page pagination.Page) ([]entity.View, pagination.Meta, error)
	OrganizerDashboard(ctx context.Context, actor identity.Principal, organizerID string) (*usecase.OrganizerStats, error)

	PlayerOpportunities(ctx context.Context, actor identity.Principal, playerID string, kind entity.MemberKind, page pagination.Page) ([]entity.View, pagination.Meta, error)
	PlayerDashboard(ctx context.Context, actor identity.Principal, playerID string) (*usecase.PlayerStats, error)
	Register(ctx context.Context, actor identity.Principal, playerID, opportunityID string) (string, error)
	Join(ctx context.Context, actor identity.Principal, playerID, opportunityID string) (string, error)
}

// OpportunityHandler serves /opportunities, /organizers and /players.
type OpportunityHandler struct {
	lifecycle LifecycleUsecase
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(lifecycle LifecycleUsecase) *OpportunityHandler {
	return &OpportunityHandler{lifecycle: lifecycle}
}

// List handles GET /opportunities?page=&limit=&status=.
func (h *OpportunityHandler) List(c *gin.Context) {
	actor, page, ok := principalAndPage(c)
	if !ok {
		return
	}
	views, meta, err := h.lifecycle.List(c.Request.Context(), actor, c.Query("status"), page)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOpportunityListResponse(views, meta))
}

// Count handles GET /opportunities/count?status=.
func (h *OpportunityHandler) Count(c *gin.Context) {
	n, err := h.lifecycle.Count(c.Request.Context(), c.Query("status"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// Get handles GET /opportunities/:id.
func (h *OpportunityHandler) Get(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	view, err := h.lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOpportunityResponse(view))
}

// Create handles POST /opportunities.
func (h *OpportunityHandler) Create(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	var req dto.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("create opportunity bind failed", zap.Error(err), zap.String("user_id", actor.UserID))
		respond.Error(c, apperr.Wrap(apperr.InvalidArgument, "invalid request body", err))
		return
	}

	view, err := h.lifecycle.Create(c.Request.Context(), actor, usecase.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventDate:   req.EventDate,
		Capacity:    req.Capacity,
		OrganizerID: req.OrganizerID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOpportunityResponse(view))
}

// SetStatus handles PATCH /opportunities/:id/status.
func (h *OpportunityHandler) SetStatus(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperr.Wrap(apperr.InvalidArgument, "Invalid status value", err))
		return
	}
	if err := h.lifecycle.SetStatus(c.Request.Context(), actor, c.Param("id"), req.Status); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Opportunity status updated successfully")
}

// principalAndPage resolves the caller and the page query. It writes the
// error response itself and reports false on failure.
func principalAndPage(c *gin.Context) (identity.Principal, pagination.Page, bool) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return identity.Principal{}, pagination.Page{}, false
	}
	page, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		respond.Error(c, err)
		return identity.Principal{}, pagination.Page{}, false
	}
	return actor, page, true
}
