package controllers

import (
	"strings"

	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SearchController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSearchController(db *gorm.DB, cfg *config.Config) *SearchController {
	return &SearchController{DB: db, Cfg: cfg}
}

// Search godoc
// @Summary Search discussions, comments and users
// @Description Case-insensitive substring match; queries under 2 characters return empty sets
// @Tags search
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} utils.SuccessResponse
// @Router /search [get]
func (sc *SearchController) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))

	discussions := []models.Discussion{}
	comments := []models.Comment{}
	users := []models.User{}

	// Слишком короткий запрос — не трогаем базу вообще
	if len([]rune(query)) < 2 {
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"discussions": []fiber.Map{},
			"comments":    []fiber.Map{},
			"users":       []fiber.Map{},
		})
	}

	pattern := "%" + strings.ToLower(query) + "%"

	sc.DB.Preload("User").
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern).
		Find(&discussions)

	sc.DB.Preload("User").
		Where("LOWER(content) LIKE ?", pattern).
		Find(&comments)

	sc.DB.
		Where("LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern).
		Find(&users)

	discussionViews := make([]fiber.Map, 0, len(discussions))
	for _, d := range discussions {
		discussionViews = append(discussionViews, fiber.Map{
			"id":     d.ID,
			"title":  d.Title,
			"author": d.User.Username,
		})
	}

	commentViews := make([]fiber.Map, 0, len(comments))
	for _, cm := range comments {
		commentViews = append(commentViews, fiber.Map{
			"id":            cm.ID,
			"content":       cm.Content,
			"discussion_id": cm.DiscussionID,
			"author":        cm.User.Username,
		})
	}

	userViews := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		userViews = append(userViews, fiber.Map{
			"id":         u.ID,
			"username":   u.Username,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"avatar":     u.Avatar,
			"reputation": u.Reputation,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"discussions": discussionViews,
		"comments":    commentViews,
		"users":       userViews,
	})
}
