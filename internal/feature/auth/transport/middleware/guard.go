// Package middleware binds the authorization guard to gin routes.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/auth/domain/permission"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/http/respond"
	jwtmw "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/jwt"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// Authorizer resolves a bearer token for one operation.
type Authorizer interface {
	Authorize(ctx context.Context, token string, op permission.Operation) (identity.Principal, error)
}

// Require runs the guard for op before the handler and stores the principal
// in the request context. Nothing downstream runs on failure.
func Require(a Authorizer, op permission.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := jwtmw.BearerToken(c.GetHeader("Authorization"))

		p, err := a.Authorize(c.Request.Context(), token, op)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// Principal returns the caller resolved by Require. Handlers mounted without
// Require get an Unauthenticated error.
func Principal(c *gin.Context) (identity.Principal, error) {
	p, ok := identity.FromContext(c.Request.Context())
	if !ok {
		return identity.Principal{}, apperr.New(apperr.Unauthenticated, "Please authenticate.")
	}
	return p, nil
}
