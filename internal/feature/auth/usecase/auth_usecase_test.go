package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

func newTestAuthUsecase(users UserStore, tokens TokenService, revocations RevocationStore) *AuthUsecase {
	uc := NewAuthUsecase(users, tokens, revocations)
	uc.hashCost = bcrypt.MinCost
	return uc
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Parallel()

	t.Run("successful register", func(t *testing.T) {
		t.Parallel()

		var saved *entity.User
		users := &mockUserStore{CreateFunc: func(u *entity.User) error {
			saved = u
			u.ID = "10"
			return nil
		}}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

		got, err := uc.Register(context.Background(), RegisterInput{
			Name: " <b>Olive</b> ", Email: " Olive@Example.COM ", Password: "password123", Role: "organizer",
		})
		require.NoError(t, err)
		assert.Equal(t, "10", got.ID)
		assert.Equal(t, "Olive", saved.Name)
		assert.Equal(t, "olive@example.com", saved.Email)
		assert.Equal(t, identity.RoleOrganizer, saved.Role)
		assert.Equal(t, entity.StatusActive, saved.Status)
		assert.False(t, saved.IsDeleted)
		assert.NotEqual(t, "password123", saved.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("password123")))
	})

	t.Run("validation errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			in      RegisterInput
			wantMsg string
		}{
			{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1", Role: "player"}, "name is required"},
			{"markup only name", RegisterInput{Name: "<i></i>", Email: "a@b.co", Password: "secret1", Role: "player"}, "name is required"},
			{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret1", Role: "player"}, "email must be a valid email address"},
			{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "123", Role: "player"}, "password must be at least 6 characters"},
			{"admin role", RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1", Role: "admin"}, "role must be organizer or player"},
			{"missing role", RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"}, "role is required"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				users := &mockUserStore{CreateFunc: func(*entity.User) error {
					t.Error("Create must not be called")
					return nil
				}}
				uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

				_, err := uc.Register(context.Background(), tt.in)
				require.Error(t, err)
				assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
				assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))
			})
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{CreateFunc: func(*entity.User) error { return usersuc.ErrEmailAlreadyExists }}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

		_, err := uc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1", Role: "player"})
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{CreateFunc: func(*entity.User) error { return errors.New("db down") }}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

		_, err := uc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1", Role: "player"})
		assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()

	hash := hashOf(t, "password123")
	live := &entity.User{ID: "3", Email: "p@example.com", Role: identity.RolePlayer, PasswordHash: hash}
	gone := &entity.User{ID: "4", Email: "g@example.com", Role: identity.RolePlayer, PasswordHash: hash, IsDeleted: true}

	users := &mockUserStore{FindByEmailFunc: func(email string) (*entity.User, error) {
		switch email {
		case live.Email:
			return live, nil
		case gone.Email:
			return gone, nil
		case "broken@example.com":
			return nil, errors.New("db down")
		}
		return nil, usersuc.ErrUserNotFound
	}}

	exp := time.Now().Add(time.Hour)
	tokens := &mockTokenService{IssueFunc: func(userID, email string, role identity.Role) (string, jwtmw.Claims, error) {
		return "token-" + userID, jwtmw.Claims{UserID: userID, ExpiresAt: exp}, nil
	}}
	uc := newTestAuthUsecase(users, tokens, nil)

	t.Run("success normalizes email", func(t *testing.T) {
		t.Parallel()

		res, err := uc.Login(context.Background(), " P@Example.com ", "password123")
		require.NoError(t, err)
		assert.Equal(t, "token-3", res.Token)
		assert.Equal(t, exp, res.ExpiresAt)
		assert.Same(t, live, res.User)
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantKind apperr.Kind
	}{
		{"wrong password", "p@example.com", "wrong", apperr.Unauthenticated},
		{"unknown email", "who@example.com", "password123", apperr.Unauthenticated},
		{"deleted user", "g@example.com", "password123", apperr.Unauthenticated},
		{"store failure", "broken@example.com", "password123", apperr.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := uc.Login(context.Background(), tt.email, tt.password)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			if tt.wantKind == apperr.Unauthenticated {
				assert.Equal(t, msgInvalidCredentials, apperr.MessageOf(err))
			}
		})
	}

	t.Run("issue failure", func(t *testing.T) {
		t.Parallel()

		failing := &mockTokenService{IssueFunc: func(string, string, identity.Role) (string, jwtmw.Claims, error) {
			return "", jwtmw.Claims{}, errors.New("sign failed")
		}}
		uc := newTestAuthUsecase(users, failing, nil)
		_, err := uc.Login(context.Background(), "p@example.com", "password123")
		assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	})
}

func TestAuthUsecase_Logout(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour)
	p := identity.Principal{UserID: "1", TokenID: "jti-9", ExpiresAt: exp}

	t.Run("revokes until expiry", func(t *testing.T) {
		t.Parallel()

		var gotID string
		var gotExp time.Time
		rev := &mockRevocationStore{RevokeFunc: func(id string, e time.Time) error {
			gotID, gotExp = id, e
			return nil
		}}
		uc := newTestAuthUsecase(&mockUserStore{}, &mockTokenService{}, rev)

		require.NoError(t, uc.Logout(context.Background(), p))
		assert.Equal(t, "jti-9", gotID)
		assert.Equal(t, exp, gotExp)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		rev := &mockRevocationStore{RevokeFunc: func(string, time.Time) error { return errors.New("down") }}
		uc := newTestAuthUsecase(&mockUserStore{}, &mockTokenService{}, rev)
		assert.Equal(t, apperr.Internal, apperr.KindOf(uc.Logout(context.Background(), p)))
	})

	t.Run("no store is a no-op", func(t *testing.T) {
		t.Parallel()

		uc := newTestAuthUsecase(&mockUserStore{}, &mockTokenService{}, nil)
		assert.NoError(t, uc.Logout(context.Background(), p))
	})
}

func TestAuthUsecase_EnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates missing admin", func(t *testing.T) {
		t.Parallel()

		var saved *entity.User
		users := &mockUserStore{CreateFunc: func(u *entity.User) error { saved = u; return nil }}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

		created, err := uc.EnsureAdmin(context.Background(), "", "Root@Example.com", "changeme")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, identity.RoleAdmin, saved.Role)
		assert.Equal(t, "Admin", saved.Name)
		assert.Equal(t, "root@example.com", saved.Email)
	})

	t.Run("existing email is left alone", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			FindByEmailFunc: func(string) (*entity.User, error) { return &entity.User{ID: "1"}, nil },
			CreateFunc: func(*entity.User) error {
				t.Error("Create must not be called")
				return nil
			},
		}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)

		created, err := uc.EnsureAdmin(context.Background(), "Root", "root@example.com", "changeme")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("unset credentials skip", func(t *testing.T) {
		t.Parallel()

		uc := newTestAuthUsecase(&mockUserStore{}, &mockTokenService{}, nil)
		created, err := uc.EnsureAdmin(context.Background(), "Root", "", "")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("lost race counts as existing", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{CreateFunc: func(*entity.User) error { return usersuc.ErrEmailAlreadyExists }}
		uc := newTestAuthUsecase(users, &mockTokenService{}, nil)
		created, err := uc.EnsureAdmin(context.Background(), "Root", "root@example.com", "changeme")
		require.NoError(t, err)
		assert.False(t, created)
	})
}
