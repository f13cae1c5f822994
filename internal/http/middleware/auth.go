package middleware

import (
	"context"
	"strings"

	"bustiming/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	// AdminKey holds the domain.AdminIdentity of an authenticated request.
	AdminKey         = "admin"
	AdminUsernameKey = "adminUsername"
	// UserRoleKey is read by RequireRoles.
	UserRoleKey = "userRole"
)

// TokenAuthorizer resolves a bearer token to an administrator.
type TokenAuthorizer interface {
	Authorize(ctx context.Context, token string) (domain.AdminIdentity, error)
}

// ErrorResponder writes err as the API's standard error payload.
type ErrorResponder func(c *gin.Context, err error)

// RequireAdmin rejects requests without a valid bearer token and stores the
// resolved identity on the context.
func RequireAdmin(auth TokenAuthorizer, respond ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond(c, domain.AuthError{Kind: domain.InvalidToken})
			c.Abort()
			return
		}
		id, err := auth.Authorize(c.Request.Context(), token)
		if err != nil {
			respond(c, err)
			c.Abort()
			return
		}
		c.Set(AdminKey, id)
		c.Set(AdminUsernameKey, id.Username)
		c.Set(UserRoleKey, id.Role)
		c.Next()
	}
}

// CurrentAdmin returns the identity stored by RequireAdmin.
func CurrentAdmin(c *gin.Context) (domain.AdminIdentity, bool) {
	v, ok := c.Get(AdminKey)
	if !ok {
		return domain.AdminIdentity{}, false
	}
	id, ok := v.(domain.AdminIdentity)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
