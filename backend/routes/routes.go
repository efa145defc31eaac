package routes

import (
	"muschats/backend/config"
	"muschats/backend/controllers"
	"muschats/backend/middleware"
	"muschats/backend/moderation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	moderator := moderation.NewClient(cfg)

	authMiddleware := middleware.AuthMiddleware(db, cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/auth/logout", authController.Logout)

	// Discussion routes
	discussionController := controllers.NewDiscussionController(db, cfg, moderator)
	app.Get("/api/discussions", discussionController.List)
	app.Get("/api/discussions/:id", discussionController.Get)
	app.Post("/api/discussions", authMiddleware, discussionController.Create)
	app.Put("/api/discussions/:id", authMiddleware, discussionController.Update)
	app.Delete("/api/discussions/:id", authMiddleware, discussionController.Delete)
	app.Post("/api/discussions/:id/lock", authMiddleware, discussionController.ToggleLock)
	app.Post("/api/discussions/:id/pin", authMiddleware, discussionController.TogglePin)

	// Comment routes
	commentController := controllers.NewCommentController(db, cfg, moderator)
	app.Post("/api/discussions/:id/comments", authMiddleware, commentController.Add)
	app.Put("/api/comments/:id", authMiddleware, commentController.Update)
	app.Delete("/api/comments/:id", authMiddleware, commentController.Delete)

	// Like routes
	likeController := controllers.NewLikeController(db, cfg)
	app.Post("/api/like/discussion/:id", authMiddleware, likeController.ToggleDiscussionLike)
	app.Post("/api/like/comment/:id", authMiddleware, likeController.ToggleCommentLike)
	app.Post("/api/sitelike", authMiddleware, likeController.SiteLike)
	app.Get("/api/sitelike", likeController.SiteLikeCount)

	// Search
	searchController := controllers.NewSearchController(db, cfg)
	app.Get("/api/search", searchController.Search)

	// Events
	eventController := controllers.NewEventController(db, cfg)
	app.Get("/api/events/upcoming", eventController.Upcoming)

	// Profile routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/profile", authMiddleware, userController.UpdateProfile)
	app.Post("/api/profile/avatar", authMiddleware, userController.UploadAvatar)
	app.Get("/api/users/:username", userController.PublicProfile)
	app.Get("/api/leaderboard", userController.Leaderboard)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/pending", adminController.PendingApprovals)
	admin.Post("/users/:id/approve", adminController.ApproveUser)
	admin.Delete("/users/:id", adminController.DeleteUser)
	admin.Post("/events", eventController.Create)
	admin.Delete("/events/:id", eventController.Delete)
}
