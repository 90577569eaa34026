package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/formation-api/internal/service"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
	"github.com/noah-isme/formation-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing verified JWT claims.
	ContextUserKey = "currentUser"
	// ContextPrincipalKey stores the principal re-resolved from the token.
	ContextPrincipalKey = "currentPrincipal"
)

// JWT protects routes by requiring a valid bearer token whose principal
// still exists.
func JWT(guard *service.AccessGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, principal, err := guard.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
