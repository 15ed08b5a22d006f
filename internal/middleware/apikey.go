package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdhanush27/Form-Pulse/internal/response"
	"github.com/gdhanush27/Form-Pulse/internal/service"
)

// RequireAdminKey validates the X-Admin-Key header against the configured
// bcrypt hash. Guards the audit endpoints.
func RequireAdminKey(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.CheckAdminKey(key); err != nil {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}

		c.Next()
	}
}
