// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/http/dto"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/middleware"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register はorganizerまたはplayerのアカウントを作成します。
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	// Login はユーザーを認証し、成功時にJWTトークンを返します。
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	// Logout は提示されたトークンを失効させます。
	Logout(ctx context.Context, p identity.Principal) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400、メール重複時は409、成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("register validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		respond.Error(c, apperr.Wrap(apperr.InvalidArgument, "name, email, password and role are required", err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	zap.L().Info("user registered", zap.String("user_id", user.ID), zap.String("role", user.Role.String()))
	c.JSON(http.StatusCreated, summaryOf(user.ID, user.Name, user.Email, user.Role))
}

// Login はログインAPIエンドポイントを処理します。
// - 認証失敗時は理由を区別せず401を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("login validation failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		respond.Error(c, apperr.Wrap(apperr.InvalidArgument, "email and password are required", err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		zap.L().Warn("login failed", zap.Error(err), zap.String("remote_addr", c.ClientIP()))
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      summaryOf(res.User.ID, res.User.Name, res.User.Email, res.User.Role),
	})
}

// Logout は現在のトークンを失効させます。
func (h *AuthHandler) Logout(c *gin.Context) {
	p, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), p); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Logged out")
}

// Me は認証済みユーザーのプロフィールを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	p, err := middleware.Principal(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryOf(p.UserID, p.Name, p.Email, p.Role))
}

func summaryOf(id, name, email string, role identity.Role) dto.UserSummary {
	return dto.UserSummary{ID: id, Name: name, Email: email, Role: role.String()}
}
