package adapters

import (
	"strconv"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:255;not null"`
	Email        string     `gorm:"uniqueIndex;size:255;not null"`
	Role         string     `gorm:"size:16;index;not null"`
	PasswordHash string     `gorm:"column:password;size:255;not null"`
	Status       string     `gorm:"size:16;not null;default:active"`
	IsDeleted    bool       `gorm:"index;not null;default:false"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:           FormatID(m.ID),
		Name:         m.Name,
		Email:        m.Email,
		Role:         identity.Role(m.Role),
		PasswordHash: m.PasswordHash,
		Status:       entity.Status(m.Status),
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
// An ID that does not parse leaves the model ID zero so the database assigns one.
func UserModelFromEntity(u *entity.User) *UserModel {
	id, _ := ParseID(u.ID)
	status := string(u.Status)
	if status == "" {
		status = string(entity.StatusActive)
	}
	return &UserModel{
		ID:           id,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		Status:       status,
		IsDeleted:    u.IsDeleted,
		DeletedAt:    u.DeletedAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// FormatID renders a relational primary key as the opaque string ID used by the domain.
func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a domain ID back to a relational primary key.
func ParseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
