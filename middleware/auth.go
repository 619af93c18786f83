package middleware

import (
	"strings"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const userContextKey = "user"

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// authenticate resolves the bearer token to an unblocked user
func authenticate(c *gin.Context, db *gorm.DB, secret string) (*models.User, *utils.AppError) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, utils.UnauthorizedError("Please login for access", nil)
	}

	claims, err := utils.ValidateToken(tokenString, secret)
	if err != nil {
		utils.LogDebug("Invalid token: %v", err)
		return nil, utils.UnauthorizedError(utils.ErrInvalidToken, nil)
	}

	var user models.User
	if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
		utils.LogError("Token user %d not found: %v", claims.UserID, err)
		return nil, utils.UnauthorizedError("User not found", nil)
	}
	if user.IsBlocked {
		utils.LogError("Blocked user attempted access: %d", user.ID)
		return nil, utils.ForbiddenError(utils.ErrUserBlocked, nil)
	}
	return &user, nil
}

// AuthMiddleware requires a valid bearer token
func AuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, appErr := authenticate(c, db, secret)
		if appErr != nil {
			utils.RespondError(c, appErr)
			c.Abort()
			return
		}

		c.Set(userContextKey, *user)
		utils.LogDebug("User %d authenticated", user.ID)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is sent and
// lets anonymous requests through
func OptionalAuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			if user, appErr := authenticate(c, db, secret); appErr == nil {
				c.Set(userContextKey, *user)
			}
		}
		c.Next()
	}
}

// AdminMiddleware requires the authenticated user to be an admin. It must run
// after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			utils.LogError("Non-admin user attempted admin access: %d", user.ID)
			utils.Forbidden(c, utils.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by the auth middleware
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
