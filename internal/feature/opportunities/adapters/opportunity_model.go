package adapters

import (
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	useradapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/adapters"
)

// OpportunityModel is the GORM model for the opportunities table.
type OpportunityModel struct {
	ID          uint          `gorm:"primaryKey"`
	Title       string        `gorm:"size:255;not null"`
	Description string        `gorm:"type:text;not null"`
	Location    *string       `gorm:"size:255"`
	EventDate   *time.Time    `gorm:"index"`
	Capacity    *int          `gorm:"column:capacity"`
	OrganizerID uint          `gorm:"index;not null"`
	Status      string        `gorm:"size:16;index;not null;default:pending"`
	Members     []MemberModel `gorm:"foreignKey:OpportunityID"`
	CreatedAt   time.Time     `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (OpportunityModel) TableName() string {
	return "opportunities"
}

// MemberModel is one player in one membership set. The composite primary key
// is what makes a second add of the same player a no-op.
type MemberModel struct {
	OpportunityID uint   `gorm:"primaryKey;autoIncrement:false"`
	UserID        uint   `gorm:"primaryKey;autoIncrement:false;index"`
	Kind          string `gorm:"primaryKey;size:16"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM.
func (MemberModel) TableName() string {
	return "opportunity_members"
}

// ToEntity converts the GORM model to a domain entity. Members must be preloaded.
func (m *OpportunityModel) ToEntity() *entity.Opportunity {
	o := &entity.Opportunity{
		ID:                useradapters.FormatID(m.ID),
		Title:             m.Title,
		Description:       m.Description,
		Location:          m.Location,
		EventDate:         m.EventDate,
		Capacity:          m.Capacity,
		OrganizerID:       useradapters.FormatID(m.OrganizerID),
		Status:            entity.Status(m.Status),
		RegisteredPlayers: []string{},
		JoinedPlayers:     []string{},
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, mem := range m.Members {
		id := useradapters.FormatID(mem.UserID)
		switch entity.MemberKind(mem.Kind) {
		case entity.MemberRegistered:
			o.RegisteredPlayers = append(o.RegisteredPlayers, id)
		case entity.MemberJoined:
			o.JoinedPlayers = append(o.JoinedPlayers, id)
		}
	}
	return o
}

// OpportunityModelFromEntity converts a domain entity to a GORM model. Membership
// sets are not copied; they are only ever written through AddMember.
func OpportunityModelFromEntity(o *entity.Opportunity) (*OpportunityModel, bool) {
	organizerID, ok := useradapters.ParseID(o.OrganizerID)
	if !ok {
		return nil, false
	}
	id, _ := useradapters.ParseID(o.ID)
	status := string(o.Status)
	if status == "" {
		status = string(entity.StatusPending)
	}
	return &OpportunityModel{
		ID:          id,
		Title:       o.Title,
		Description: o.Description,
		Location:    o.Location,
		EventDate:   o.EventDate,
		Capacity:    o.Capacity,
		OrganizerID: organizerID,
		Status:      status,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}, true
}
