package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/middleware"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/transport/http/dto"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
)

// OrganizerOpportunities handles GET /organizers/:organizerId/opportunities.
func (h *OpportunityHandler) OrganizerOpportunities(c *gin.Context) {
	actor, page, ok := principalAndPage(c)
	if !ok {
		return
	}
	views, meta, err := h.lifecycle.OrganizerOpportunities(c.Request.Context(), actor, c.Param("organizerId"), page)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOpportunityListResponse(views, meta))
}

// OrganizerDashboard handles GET /organizers/:organizerId/dashboard-stats.
func (h *OpportunityHandler) OrganizerDashboard(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	stats, err := h.lifecycle.OrganizerDashboard(c.Request.Context(), actor, c.Param("organizerId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizerDashboardResponse(stats))
}

// PlayerRegistered handles GET /players/:playerId/opportunities.
func (h *OpportunityHandler) PlayerRegistered(c *gin.Context) {
	h.playerOpportunities(c, entity.MemberRegistered)
}

// PlayerJoined handles GET /players/:playerId/joined-opportunities.
func (h *OpportunityHandler) PlayerJoined(c *gin.Context) {
	h.playerOpportunities(c, entity.MemberJoined)
}

func (h *OpportunityHandler) playerOpportunities(c *gin.Context, kind entity.MemberKind) {
	actor, page, ok := principalAndPage(c)
	if !ok {
		return
	}
	views, meta, err := h.lifecycle.PlayerOpportunities(c.Request.Context(), actor, c.Param("playerId"), kind, page)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOpportunityListResponse(views, meta))
}

// PlayerDashboard handles GET /players/:playerId/dashboard-stats.
func (h *OpportunityHandler) PlayerDashboard(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	stats, err := h.lifecycle.PlayerDashboard(c.Request.Context(), actor, c.Param("playerId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPlayerDashboardResponse(stats))
}

// Register handles POST /players/:playerId/opportunities/:opportunityId/register.
func (h *OpportunityHandler) Register(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	msg, err := h.lifecycle.Register(c.Request.Context(), actor, c.Param("playerId"), c.Param("opportunityId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, msg)
}

// Join handles POST /players/:playerId/opportunities/:opportunityId/join.
func (h *OpportunityHandler) Join(c *gin.Context) {
	actor, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	msg, err := h.lifecycle.Join(c.Request.Context(), actor, c.Param("playerId"), c.Param("opportunityId"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, msg)
}
