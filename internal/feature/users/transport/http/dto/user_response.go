// Package dto holds the JSON shapes of the user directory endpoints.
package dto

import (
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/pagination"
)

// UserResponse is the public view of a user. The password hash has no field here.
type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserListResponse is a page of users.
type UserListResponse struct {
	Data []UserResponse  `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ToUserResponse converts an entity into its public view.
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		Status:    string(u.Status),
		IsDeleted: u.IsDeleted,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
	}
}

// ToUserListResponse converts a page of entities.
func ToUserListResponse(users []entity.User, meta pagination.Meta) UserListResponse {
	data := make([]UserResponse, len(users))
	for i := range users {
		data[i] = ToUserResponse(&users[i])
	}
	return UserListResponse{Data: data, Meta: meta}
}
