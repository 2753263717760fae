package middleware

import (
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/http/controllers"
	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// "Token <token>" is accepted too for clients of the previous API.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("Authorization header is required")
	}

	tokenParts := strings.Fields(authHeader)
	if len(tokenParts) != 2 || (tokenParts[0] != "Bearer" && tokenParts[0] != "Token") {
		return "", apperr.Unauthorized("Invalid authorization header format. Use: Bearer <token>")
	}
	return tokenParts[1], nil
}

// AuthMiddleware validates the operator token and stores the user in the context
func AuthMiddleware(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			controllers.RespondError(c, err)
			c.Abort()
			return
		}

		user, err := identity.Authenticate(c.Request.Context(), token)
		if err != nil {
			controllers.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(controllers.UserKey, user)
		c.Next()
	}
}

// DeviceAuthMiddleware validates a device check-in JWT and stores the device in the context
func DeviceAuthMiddleware(tokens *services.DeviceTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			controllers.RespondError(c, err)
			c.Abort()
			return
		}

		device, err := tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			controllers.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(controllers.DeviceKey, device)
		c.Next()
	}
}
