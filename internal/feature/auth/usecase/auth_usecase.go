package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	usersuc "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/sanitize"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72

	msgInvalidCredentials = "invalid email or password"
)

// RegisterInput carries a self-service signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// LoginResult is a freshly issued token with the user it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// AuthUsecase implements register, login, logout and the bootstrap admin.
type AuthUsecase struct {
	users       UserStore
	tokens      TokenService
	revocations RevocationStore
	hashCost    int
}

// NewAuthUsecase creates an AuthUsecase.
func NewAuthUsecase(users UserStore, tokens TokenService, revocations RevocationStore) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		hashCost:    bcrypt.DefaultCost,
	}
}

// Register creates an active organizer or player account.
// Admin accounts cannot be self-registered.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Name = sanitize.Text(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required.Error("name is required")),
		validation.Field(&in.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("email must be a valid email address"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(minPasswordLength, 0).Error("password must be at least 6 characters"),
			validation.Length(0, maxPasswordLength).Error("password must be at most 72 bytes"),
		),
		validation.Field(&in.Role,
			validation.Required.Error("role is required"),
			validation.In(string(identity.RoleOrganizer), string(identity.RolePlayer)).Error("role must be organizer or player"),
		),
	); err != nil {
		return nil, apperr.Wrap(apperr.InvalidArgument, firstValidationMessage(err), err)
	}

	return u.createUser(ctx, in.Name, in.Email, in.Password, identity.Role(in.Role))
}

// Login verifies credentials and issues a token. Unknown emails, deleted users
// and wrong passwords are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, usersuc.ErrUserNotFound) {
			return nil, apperr.New(apperr.Unauthenticated, msgInvalidCredentials)
		}
		return nil, apperr.Wrap(apperr.Internal, "find user by email", err)
	}
	if user.IsDeleted {
		return nil, apperr.New(apperr.Unauthenticated, msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.Unauthenticated, msgInvalidCredentials)
	}

	token, claims, err := u.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "issue token", err)
	}
	zap.L().Info("user logged in", zap.String("user_id", user.ID), zap.String("role", user.Role.String()))
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// Logout revokes the token the principal authenticated with until it expires.
func (u *AuthUsecase) Logout(ctx context.Context, p identity.Principal) error {
	if u.revocations == nil || p.TokenID == "" {
		return nil
	}
	if err := u.revocations.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return apperr.Wrap(apperr.Internal, "revoke token", err)
	}
	return nil
}

// EnsureAdmin creates an admin with the given credentials unless a user with
// that email already exists. It reports whether a user was created.
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	if name = sanitize.Text(name); name == "" {
		name = "Admin"
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, usersuc.ErrUserNotFound) {
		return false, apperr.Wrap(apperr.Internal, "find admin", err)
	}

	if _, err := u.createUser(ctx, name, email, password, identity.RoleAdmin); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *AuthUsecase) createUser(ctx context.Context, name, email, password string, role identity.Role) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		Status:       entity.StatusActive,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, usersuc.ErrEmailAlreadyExists) {
			return nil, apperr.Wrap(apperr.Conflict, "Email already registered", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "create user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// firstValidationMessage picks a deterministic message out of ozzo's field map.
func firstValidationMessage(err error) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range []string{"Name", "Email", "Password", "Role"} {
			if fe, ok := errs[field]; ok && fe != nil {
				return fe.Error()
			}
		}
	}
	return "invalid request"
}
