package middleware

import (
	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// AuthMiddleware resolves the session token to a user row and stores it
// on the request context. The row is re-read on every request so role,
// avatar and the approved flag are always current.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}

// AdminMiddleware requires an authenticated administrator. Must run
// after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsAdmin() {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
