package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"civicfix-be/apperrors"
	"civicfix-be/models"
	"civicfix-be/store"
	authUtils "civicfix-be/utils"
)

const (
	principalKey = "principal"
	authCookie   = "auth_token"
)

// AuthGate resolves auth tokens to principals. The bootstrap admin is served
// from configuration and never looked up in the user store.
type AuthGate struct {
	secret    string
	bootstrap models.Principal
	users     store.UserStore
}

func NewAuthGate(secret string, bootstrap models.Principal, users store.UserStore) *AuthGate {
	return &AuthGate{secret: secret, bootstrap: bootstrap, users: users}
}

// ResolvePrincipal verifies token and loads the identity it names.
func (g *AuthGate) ResolvePrincipal(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := authUtils.ParseToken(g.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	if g.bootstrap.ID != "" && claims.UserID == g.bootstrap.ID {
		admin := g.bootstrap
		admin.Role = models.RoleAdmin
		return &admin, nil
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user %s: %v", apperrors.ErrInternal, claims.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s no longer exists", apperrors.ErrUnauthorized, claims.UserID)
	}
	return user.Principal(), nil
}

// AuthMiddleware requires a bearer token (or the auth_token cookie) and
// stores the resolved principal on the context.
func (g *AuthGate) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		principal, err := g.ResolvePrincipal(ctx, token)
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			abortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(authCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentPrincipal returns the principal set by AuthMiddleware, or nil.
func CurrentPrincipal(c *gin.Context) *models.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*models.Principal)
	return principal
}

// RequireAdmin rejects principals without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := CurrentPrincipal(c)
		if principal == nil {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !principal.IsAdmin() {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		log.Printf("Error in %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}
