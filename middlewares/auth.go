package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventboard/models"
	"eventboard/utils"
)

const userKey = "authUser"

// Authenticate verifies the bearer token and resolves it to a live user
// record, which is attached to the request context. A token whose user has
// since been deleted is rejected like any other invalid token.
func Authenticate(users models.UserRepository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		userID, err := utils.VerifyToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		user, err := users.GetByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin rejects non-admin identities. Must run after Authenticate.
func RequireAdmin(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
		return
	}
	if user.Role != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	c.Next()
}

// CurrentUser returns the identity Authenticate attached to this request.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
