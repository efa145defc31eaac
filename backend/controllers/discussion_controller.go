package controllers

import (
	"strconv"
	"time"

	"muschats/backend/config"
	"muschats/backend/middleware"
	"muschats/backend/models"
	"muschats/backend/moderation"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DiscussionController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Moderator *moderation.Client
}

func NewDiscussionController(db *gorm.DB, cfg *config.Config, mod *moderation.Client) *DiscussionController {
	return &DiscussionController{DB: db, Cfg: cfg, Moderator: mod}
}

type DiscussionInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func discussionLikeCount(db *gorm.DB, discussionID uint) int64 {
	var count int64
	db.Model(&models.DiscussionLike{}).Where("discussion_id = ?", discussionID).Count(&count)
	return count
}

func commentLikeCount(db *gorm.DB, commentID uint) int64 {
	var count int64
	db.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count)
	return count
}

func authorView(user models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"avatar":     user.Avatar,
		"role":       user.Role,
	}
}

// List godoc
// @Summary List discussions
// @Description Home listing: pinned discussions first, then newest first
// @Tags discussions
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /discussions [get]
func (dc *DiscussionController) List(c *fiber.Ctx) error {
	var discussions []models.Discussion
	if err := dc.DB.Preload("User").
		Order("pinned DESC, created_at DESC").
		Find(&discussions).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch discussions")
	}

	items := make([]fiber.Map, 0, len(discussions))
	for _, d := range discussions {
		var commentCount int64
		dc.DB.Model(&models.Comment{}).Where("discussion_id = ?", d.ID).Count(&commentCount)

		items = append(items, fiber.Map{
			"id":            d.ID,
			"title":         d.Title,
			"content":       d.Content,
			"author":        authorView(d.User),
			"created_at":    d.CreatedAt,
			"edited":        d.Edited,
			"edited_at":     d.EditedAt,
			"pinned":        d.Pinned,
			"locked":        d.Locked,
			"like_count":    discussionLikeCount(dc.DB, d.ID),
			"comment_count": commentCount,
		})
	}

	return utils.Success(c, fiber.StatusOK, items)
}

// Get godoc
// @Summary Get a discussion with its comments
// @Tags discussions
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /discussions/{id} [get]
func (dc *DiscussionController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := dc.DB.Preload("User").First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	var comments []models.Comment
	dc.DB.Preload("User").
		Where("discussion_id = ?", discussion.ID).
		Order("created_at ASC").
		Find(&comments)

	commentViews := make([]fiber.Map, 0, len(comments))
	for _, cm := range comments {
		commentViews = append(commentViews, fiber.Map{
			"id":         cm.ID,
			"content":    cm.Content,
			"author":     authorView(cm.User),
			"created_at": cm.CreatedAt,
			"edited":     cm.Edited,
			"edited_at":  cm.EditedAt,
			"like_count": commentLikeCount(dc.DB, cm.ID),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         discussion.ID,
		"title":      discussion.Title,
		"content":    discussion.Content,
		"author":     authorView(discussion.User),
		"created_at": discussion.CreatedAt,
		"edited":     discussion.Edited,
		"edited_at":  discussion.EditedAt,
		"pinned":     discussion.Pinned,
		"locked":     discussion.Locked,
		"like_count": discussionLikeCount(dc.DB, discussion.ID),
		"comments":   commentViews,
	})
}

// Create godoc
// @Summary Create a discussion
// @Description Requires an approved account; text passes the moderation gate
// @Tags discussions
// @Accept json
// @Produce json
// @Param input body DiscussionInput true "Discussion data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions [post]
func (dc *DiscussionController) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input DiscussionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" || input.Content == "" {
		return utils.BadRequest(c, "Title and content are required")
	}

	if !user.CanPost() {
		return utils.Forbidden(c, "Account pending approval")
	}

	if verdict := dc.Moderator.Check(c.UserContext(), input.Title+"\n\n"+input.Content); !verdict.Safe {
		return utils.ContentRejected(c, verdict.Reason)
	}

	discussion := models.Discussion{
		Title:   input.Title,
		Content: input.Content,
		UserID:  user.ID,
	}

	if err := dc.DB.Create(&discussion).Error; err != nil {
		return utils.InternalServerError(c, "Could not create discussion")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"id": discussion.ID})
}

// Update godoc
// @Summary Edit a discussion
// @Description Only the original author may edit; admins may not
// @Tags discussions
// @Accept json
// @Produce json
// @Param id path int true "Discussion ID"
// @Param input body DiscussionInput true "New title and content"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{id} [put]
func (dc *DiscussionController) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := dc.DB.First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	if discussion.UserID != user.ID {
		return utils.Forbidden(c, "Only the author may edit this discussion")
	}

	var input DiscussionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" || input.Content == "" {
		return utils.BadRequest(c, "Title and content are required")
	}

	if verdict := dc.Moderator.Check(c.UserContext(), input.Title+"\n\n"+input.Content); !verdict.Safe {
		return utils.ContentRejected(c, verdict.Reason)
	}

	now := time.Now()
	discussion.Title = input.Title
	discussion.Content = input.Content
	discussion.Edited = true
	discussion.EditedAt = &now

	if err := dc.DB.Save(&discussion).Error; err != nil {
		return utils.InternalServerError(c, "Could not update discussion")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Discussion updated")
}

// deleteDiscussionCascade removes a discussion together with its
// comments, the likes on those comments and the likes on the
// discussion itself. Runs inside the caller's transaction.
func deleteDiscussionCascade(tx *gorm.DB, discussionID uint) error {
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).
		Where("discussion_id = ?", discussionID).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}

	if len(commentIDs) > 0 {
		if err := tx.Unscoped().Where("comment_id IN ?", commentIDs).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("discussion_id = ?", discussionID).
		Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("discussion_id = ?", discussionID).
		Delete(&models.DiscussionLike{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&models.Discussion{}, discussionID).Error
}

// Delete godoc
// @Summary Delete a discussion
// @Description Author or administrator; cascades to comments and likes
// @Tags discussions
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{id} [delete]
func (dc *DiscussionController) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := dc.DB.First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	if discussion.UserID != user.ID && !user.IsAdmin() {
		return utils.Forbidden(c, "Only the author or an administrator may delete this discussion")
	}

	// Авторы, чьи лайки исчезнут вместе с дискуссией
	affected := []uint{discussion.UserID}
	var commentAuthors []uint
	dc.DB.Model(&models.Comment{}).
		Where("discussion_id = ?", discussion.ID).
		Distinct().
		Pluck("user_id", &commentAuthors)
	affected = append(affected, commentAuthors...)

	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteDiscussionCascade(tx, discussion.ID)
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete discussion")
	}

	for _, userID := range affected {
		recomputeReputation(dc.DB, userID)
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Discussion deleted")
}

// ToggleLock godoc
// @Summary Lock or unlock a discussion
// @Description Author or administrator; a locked discussion rejects new comments
// @Tags discussions
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{id}/lock [post]
func (dc *DiscussionController) ToggleLock(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := dc.DB.First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	if discussion.UserID != user.ID && !user.IsAdmin() {
		return utils.Forbidden(c, "Only the author or an administrator may lock this discussion")
	}

	discussion.Locked = !discussion.Locked
	if err := dc.DB.Save(&discussion).Error; err != nil {
		return utils.InternalServerError(c, "Could not update discussion")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"locked": discussion.Locked})
}

// TogglePin godoc
// @Summary Pin or unpin a discussion
// @Description Administrator only; pinned discussions float to the top
// @Tags discussions
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{id}/pin [post]
func (dc *DiscussionController) TogglePin(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if !user.IsAdmin() {
		return utils.Forbidden(c, "Admin access required")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := dc.DB.First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	discussion.Pinned = !discussion.Pinned
	if err := dc.DB.Save(&discussion).Error; err != nil {
		return utils.InternalServerError(c, "Could not update discussion")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"pinned": discussion.Pinned})
}
