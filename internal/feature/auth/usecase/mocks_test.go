package usecase

import (
	"context"
	"time"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// mockUserStore is a mock implementation of UserStore.
type mockUserStore struct {
	CreateFunc      func(user *entity.User) error
	FindByIDFunc    func(id string) (*entity.User, error)
	FindByEmailFunc func(email string) (*entity.User, error)
}

func (m *mockUserStore) Create(_ context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	user.ID = "1"
	return nil
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, usersuc.ErrUserNotFound
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, usersuc.ErrUserNotFound
}

// mockTokenService is a mock implementation of TokenService.
type mockTokenService struct {
	IssueFunc func(userID, email string, role identity.Role) (string, jwtmw.Claims, error)
	ParseFunc func(token string) (jwtmw.Claims, error)
}

func (m *mockTokenService) Issue(userID, email string, role identity.Role) (string, jwtmw.Claims, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(userID, email, role)
	}
	return "mock-jwt-token", jwtmw.Claims{UserID: userID, Email: email, Role: role, TokenID: "jti-1"}, nil
}

func (m *mockTokenService) Parse(token string) (jwtmw.Claims, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(token)
	}
	return jwtmw.Claims{}, jwtmw.ErrInvalidToken
}

// mockRevocationStore is a mock implementation of RevocationStore.
type mockRevocationStore struct {
	RevokeFunc    func(tokenID string, expiresAt time.Time) error
	IsRevokedFunc func(tokenID string) (bool, error)
}

func (m *mockRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(tokenID, expiresAt)
	}
	return nil
}

func (m *mockRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(tokenID)
	}
	return false, nil
}
