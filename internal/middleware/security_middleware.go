package middleware

import (
	"net/http"
	"strings"

	"go-bizbooks/internal/auth"
	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is required"})
			c.Abort()
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		// 3. Validate the token using our auth package
		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 4. Make sure the account still exists and is active
		var user models.User
		if err := database.DB.Where("id = ? AND is_deleted = ?", claims.UserID, false).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Account no longer exists or has been deactivated"})
			c.Abort()
			return
		}

		// 5. Store user info in the context for the next handler to use
		c.Set("userID", user.ID)
		c.Set("username", user.Username)

		c.Next()
	}
}
