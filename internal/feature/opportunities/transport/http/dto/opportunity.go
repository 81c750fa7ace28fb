// Package dto holds the JSON shapes of the opportunity, organizer and player endpoints.
package dto

import (
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

// CreateOpportunityRequest is the body of POST /opportunities.
// eventDate is RFC 3339.
type CreateOpportunityRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    *string    `json:"location"`
	EventDate   *time.Time `json:"eventDate"`
	Capacity    *int       `json:"capacity"`
	OrganizerID string     `json:"organizerId"`
}

// SetStatusRequest is the body of PATCH /opportunities/:id/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// OrganizerResponse is the organizer embedded in an opportunity.
type OrganizerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpportunityResponse is the public view of an opportunity.
// organizer is null when the referenced user no longer resolves.
type OpportunityResponse struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Location          *string            `json:"location"`
	EventDate         *time.Time         `json:"eventDate"`
	Capacity          *int               `json:"capacity"`
	OrganizerID       string             `json:"organizerId"`
	Organizer         *OrganizerResponse `json:"organizer"`
	Status            string             `json:"status"`
	RegisteredPlayers []string           `json:"registeredPlayers"`
	JoinedPlayers     []string           `json:"joinedPlayers"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// OpportunityListResponse is a page of opportunities.
type OpportunityListResponse struct {
	Data []OpportunityResponse `json:"data"`
	Meta pagination.Meta       `json:"meta"`
}

// CountResponse is the body of GET /opportunities/count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// RecentOpportunity is a row of the organizer dashboard.
type RecentOpportunity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrganizerDashboardResponse is the body of GET /organizers/:organizerId/dashboard-stats.
type OrganizerDashboardResponse struct {
	TotalOpportunities    int64               `json:"totalOpportunities"`
	PendingOpportunities  int64               `json:"pendingOpportunities"`
	ApprovedOpportunities int64               `json:"approvedOpportunities"`
	ClosedOpportunities   int64               `json:"closedOpportunities"`
	RecentOpportunities   []RecentOpportunity `json:"recentOpportunities"`
}

// RecentRegistration is a row of the player dashboard.
type RecentRegistration struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	EventDate *time.Time `json:"eventDate"`
	Location  *string    `json:"location"`
}

// PlayerDashboardResponse is the body of GET /players/:playerId/dashboard-stats.
type PlayerDashboardResponse struct {
	RegisteredOpportunities int64                `json:"registeredOpportunities"`
	UpcomingOpportunities   int64                `json:"upcomingOpportunities"`
	PastOpportunities       int64                `json:"pastOpportunities"`
	RecentlyRegistered      []RecentRegistration `json:"recentlyRegistered"`
}

// ToOpportunityResponse converts a view into its public shape.
func ToOpportunityResponse(v *entity.View) OpportunityResponse {
	out := OpportunityResponse{
		ID:                v.ID,
		Title:             v.Title,
		Description:       v.Description,
		Location:          v.Location,
		EventDate:         v.EventDate,
		Capacity:          v.Capacity,
		OrganizerID:       v.OrganizerID,
		Status:            string(v.Status),
		RegisteredPlayers: nonNil(v.RegisteredPlayers),
		JoinedPlayers:     nonNil(v.JoinedPlayers),
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
	if o := v.Organizer; o != nil {
		out.Organizer = &OrganizerResponse{
			ID:        o.ID,
			Name:      o.Name,
			Email:     o.Email,
			Role:      o.Role.String(),
			Status:    o.Status,
			IsDeleted: o.IsDeleted,
			CreatedAt: o.CreatedAt,
		}
	}
	return out
}

// ToOpportunityListResponse converts a page of views.
func ToOpportunityListResponse(views []entity.View, meta pagination.Meta) OpportunityListResponse {
	data := make([]OpportunityResponse, len(views))
	for i := range views {
		data[i] = ToOpportunityResponse(&views[i])
	}
	return OpportunityListResponse{Data: data, Meta: meta}
}

// ToOrganizerDashboardResponse converts organizer stats.
func ToOrganizerDashboardResponse(s *usecase.OrganizerStats) OrganizerDashboardResponse {
	recent := make([]RecentOpportunity, len(s.Recent))
	for i, o := range s.Recent {
		recent[i] = RecentOpportunity{ID: o.ID, Title: o.Title, Status: string(o.Status), CreatedAt: o.CreatedAt}
	}
	return OrganizerDashboardResponse{
		TotalOpportunities:    s.Total,
		PendingOpportunities:  s.Pending,
		ApprovedOpportunities: s.Approved,
		ClosedOpportunities:   s.Closed,
		RecentOpportunities:   recent,
	}
}

// ToPlayerDashboardResponse converts player stats.
func ToPlayerDashboardResponse(s *usecase.PlayerStats) PlayerDashboardResponse {
	recent := make([]RecentRegistration, len(s.Recent))
	for i, o := range s.Recent {
		recent[i] = RecentRegistration{ID: o.ID, Title: o.Title, EventDate: o.EventDate, Location: o.Location}
	}
	return PlayerDashboardResponse{
		RegisteredOpportunities: s.Registered,
		UpcomingOpportunities:   s.Upcoming,
		PastOpportunities:       s.Past,
		RecentlyRegistered:      recent,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
