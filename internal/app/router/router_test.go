package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/adapters"
	authhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/transport/handler"
	authusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/usecase"
	oppadapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/adapters"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	opphandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/transport/handler"
	oppusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	useradapters "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/adapters"
	userhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/transport/handler"
	userusecase "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	platformhandler "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/handler"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/testutil"
)

// app is a fully wired server over in-memory SQLite.
type app struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	auth   *authusecase.AuthUsecase
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenSQLite(t,
		&useradapters.UserModel{},
		&oppadapters.OpportunityModel{},
		&oppadapters.MemberModel{},
		&authadapters.RevokedTokenModel{},
	)
	users := useradapters.NewUserGorm(db)
	revocations := authadapters.NewRevocationGorm(db)
	tokens := jwtmw.NewManager("router-test-secret", time.Hour)

	authUC := authusecase.NewAuthUsecase(users, tokens, revocations)
	guard := authusecase.NewGuard(tokens, users, revocations)
	lifecycle := oppusecase.NewLifecycleUsecase(oppadapters.NewOpportunityGorm(db), users)

	engine := NewRouter(guard, Handlers{
		Auth:          authhandler.NewAuthHandler(authUC),
		Users:         userhandler.NewUserHandler(userusecase.NewDirectoryUsecase(users)),
		Opportunities: opphandler.NewOpportunityHandler(lifecycle),
		Health:        platformhandler.NewHealthHandler(),
	}, Options{Logger: zap.NewNop()})

	return &app{t: t, db: db, engine: engine, auth: authUC}
}

type response struct {
	code int
	body map[string]any
	raw  string
}

func (a *app) do(method, path, token string, body any) response {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := response{code: w.Code, raw: w.Body.String()}
	_ = json.Unmarshal(w.Body.Bytes(), &out.body)
	return out
}

// signup registers an account and returns its id and a fresh token.
func (a *app) signup(name, email, role string) (string, string) {
	a.t.Helper()
	res := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, res.code, res.raw)
	return res.body["id"].(string), a.login(email, "secret123")
}

func (a *app) login(email, password string) string {
	a.t.Helper()
	res := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, res.code, res.raw)
	return res.body["token"].(string)
}

func (a *app) admin() string {
	a.t.Helper()
	_, err := a.auth.EnsureAdmin(context.Background(), "Ada", "admin@example.com", "adminpass")
	require.NoError(a.t, err)
	return a.login("admin@example.com", "adminpass")
}

func message(r response) string {
	msg, _ := r.body["message"].(string)
	return msg
}

func TestRouter_CommunityCleanupFlow(t *testing.T) {
	a := newApp(t)
	admin := a.admin()
	organizerID, organizer := a.signup("Olu", "olu@example.com", "organizer")
	playerAID, playerA := a.signup("Pia", "pia@example.com", "player")
	playerBID, playerB := a.signup("Ben", "ben@example.com", "player")

	// organizer creates a pending opportunity
	res := a.do(http.MethodPost, "/opportunities", organizer, map[string]any{
		"title": "Community Cleanup", "description": "Bring gloves", "capacity": 20,
	})
	require.Equal(t, http.StatusCreated, res.code, res.raw)
	assert.Equal(t, "pending", res.body["status"])
	org := res.body["organizer"].(map[string]any)
	assert.Equal(t, organizerID, org["id"])
	assert.Equal(t, "Olu", org["name"])
	oppID := res.body["id"].(string)

	// players may not create or moderate
	res = a.do(http.MethodPost, "/opportunities", playerA, map[string]any{"title": "x", "description": "y"})
	assert.Equal(t, http.StatusForbidden, res.code)
	res = a.do(http.MethodPatch, "/opportunities/"+oppID+"/status", playerA, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, res.code)
	assert.Equal(t, "Forbidden", message(res))

	// registration is refused while pending
	res = a.do(http.MethodPost, fmt.Sprintf("/players/%s/opportunities/%s/register", playerAID, oppID), playerA, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Can only register for approved opportunities", message(res))

	// a player does not see the pending record
	res = a.do(http.MethodGet, "/opportunities/"+oppID, playerA, nil)
	assert.Equal(t, http.StatusNotFound, res.code)

	res = a.do(http.MethodPatch, "/opportunities/"+oppID+"/status", admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Equal(t, "Opportunity status updated successfully", message(res))

	res = a.do(http.MethodPatch, "/opportunities/"+oppID+"/status", admin, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "Invalid status value", message(res))

	res = a.do(http.MethodPost, fmt.Sprintf("/players/%s/opportunities/%s/register", playerAID, oppID), playerA, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Equal(t, "Successfully registered for opportunity", message(res))

	res = a.do(http.MethodPost, fmt.Sprintf("/players/%s/opportunities/%s/register", playerAID, oppID), playerA, nil)
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "Player already registered for this opportunity", message(res))

	// B joins without registering
	res = a.do(http.MethodPost, fmt.Sprintf("/players/%s/opportunities/%s/join", playerBID, oppID), playerB, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Equal(t, "Successfully joined opportunity", message(res))

	// A may not act for B
	res = a.do(http.MethodPost, fmt.Sprintf("/players/%s/opportunities/%s/join", playerBID, oppID), playerA, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = a.do(http.MethodGet, "/opportunities/"+oppID, playerA, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, []any{playerAID}, res.body["registeredPlayers"])
	assert.Equal(t, []any{playerBID}, res.body["joinedPlayers"])

	res = a.do(http.MethodGet, "/organizers/"+organizerID+"/dashboard-stats", organizer, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.GreaterOrEqual(t, res.body["totalOpportunities"].(float64), 1.0)
	assert.GreaterOrEqual(t, res.body["approvedOpportunities"].(float64), 1.0)

	res = a.do(http.MethodGet, "/players/"+playerAID+"/dashboard-stats", playerA, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, 1.0, res.body["registeredOpportunities"])
	recent := res.body["recentlyRegistered"].([]any)
	require.Len(t, recent, 1)
	assert.Equal(t, "Community Cleanup", recent[0].(map[string]any)["title"])

	res = a.do(http.MethodGet, "/players/"+playerBID+"/joined-opportunities", playerB, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, 1.0, res.body["meta"].(map[string]any)["total"])

	res = a.do(http.MethodGet, "/opportunities/counts?status=approved", admin, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.JSONEq(t, `{"count":1}`, res.raw)
}

func TestRouter_PaginationOfApproved(t *testing.T) {
	a := newApp(t)
	admin := a.admin()
	organizerID, _ := a.signup("Olu", "olu@example.com", "organizer")

	repo := oppadapters.NewOpportunityGorm(a.db)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(context.Background(), &entity.Opportunity{
			Title: fmt.Sprintf("Event %d", i), Description: "d", OrganizerID: organizerID,
			Status: entity.StatusApproved, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(context.Background(), &entity.Opportunity{
		Title: "Pending", Description: "d", OrganizerID: organizerID, Status: entity.StatusPending, CreatedAt: base,
	}))

	res := a.do(http.MethodGet, "/opportunities?status=approved&page=2&limit=10", admin, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Len(t, res.body["data"].([]any), 10)
	assert.Equal(t, map[string]any{"total": 25.0, "page": 2.0, "limit": 10.0, "totalPages": 3.0}, res.body["meta"])
	first := res.body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Event 14", first["title"], "newest first")

	res = a.do(http.MethodGet, "/opportunities?page=abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodGet, "/opportunities/count", admin, nil)
	assert.JSONEq(t, `{"count":26}`, res.raw)
}

func TestRouter_SoftDeleteAsymmetry(t *testing.T) {
	a := newApp(t)
	admin := a.admin()
	_, _ = a.signup("Pia", "pia@example.com", "player")
	benID, ben := a.signup("Ben", "ben@example.com", "player")

	res := a.do(http.MethodDelete, "/users/"+benID, admin, nil)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	assert.Equal(t, "User deleted successfully", message(res))

	// idempotent
	res = a.do(http.MethodDelete, "/users/"+benID, admin, nil)
	assert.Equal(t, http.StatusOK, res.code)

	res = a.do(http.MethodGet, "/users/"+benID, admin, nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "User not found", message(res))

	res = a.do(http.MethodGet, "/users?role=player", admin, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, 1.0, res.body["meta"].(map[string]any)["total"])

	res = a.do(http.MethodGet, "/users/count-by-role", admin, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.JSONEq(t, `{"admin":1,"organizer":0,"player":2}`, res.raw)

	// a deleted user's token stops working
	res = a.do(http.MethodGet, "/auth/me", ben, nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Please authenticate.", message(res))

	res = a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ben@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, res.code)
}

func TestRouter_AuthBoundaries(t *testing.T) {
	a := newApp(t)
	_, pia := a.signup("Pia", "pia@example.com", "player")

	res := a.do(http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Please authenticate.", message(res))

	res = a.do(http.MethodGet, "/users", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.code)

	res = a.do(http.MethodGet, "/users", pia, nil)
	assert.Equal(t, http.StatusForbidden, res.code)

	res = a.do(http.MethodGet, "/auth/me", pia, nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "player", res.body["role"])

	res = a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Pia", "email": "PIA@example.com", "password": "secret123", "role": "player",
	})
	assert.Equal(t, http.StatusConflict, res.code)

	res = a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Root", "email": "root@example.com", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, res.code)

	res = a.do(http.MethodPost, "/auth/logout", pia, nil)
	require.Equal(t, http.StatusOK, res.code)
	res = a.do(http.MethodGet, "/auth/me", pia, nil)
	assert.Equal(t, http.StatusUnauthorized, res.code, "revoked token")

	res = a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
	res = a.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	res = a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.code)
}
