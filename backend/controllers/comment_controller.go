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

type CommentController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Moderator *moderation.Client
}

func NewCommentController(db *gorm.DB, cfg *config.Config, mod *moderation.Client) *CommentController {
	return &CommentController{DB: db, Cfg: cfg, Moderator: mod}
}

type CommentInput struct {
	Content string `json:"content"`
}

// Add godoc
// @Summary Comment on a discussion
// @Description Requires an approved account and an unlocked discussion
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Discussion ID"
// @Param input body CommentInput true "Comment data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /discussions/{id}/comments [post]
func (cc *CommentController) Add(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	discussionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := cc.DB.First(&discussion, discussionID).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	// Закрытую дискуссию продолжают только ее автор и администратор
	if discussion.Locked && discussion.UserID != user.ID && !user.IsAdmin() {
		return utils.Forbidden(c, "Discussion is locked")
	}

	if !user.CanPost() {
		return utils.Forbidden(c, "Account pending approval")
	}

	var input CommentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "Content is required")
	}

	if verdict := cc.Moderator.Check(c.UserContext(), input.Content); !verdict.Safe {
		return utils.ContentRejected(c, verdict.Reason)
	}

	comment := models.Comment{
		Content:      input.Content,
		UserID:       user.ID,
		DiscussionID: discussion.ID,
	}

	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"id": comment.ID})
}

// Update godoc
// @Summary Edit a comment
// @Description Only the original author may edit
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param input body CommentInput true "New content"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /comments/{id} [put]
func (cc *CommentController) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var comment models.Comment
	if err := cc.DB.First(&comment, id).Error; err != nil {
		return utils.NotFound(c, "Comment not found")
	}

	if comment.UserID != user.ID {
		return utils.Forbidden(c, "Only the author may edit this comment")
	}

	var input CommentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "Content is required")
	}

	if verdict := cc.Moderator.Check(c.UserContext(), input.Content); !verdict.Safe {
		return utils.ContentRejected(c, verdict.Reason)
	}

	now := time.Now()
	comment.Content = input.Content
	comment.Edited = true
	comment.EditedAt = &now

	if err := cc.DB.Save(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update comment")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Comment updated")
}

// Delete godoc
// @Summary Delete a comment
// @Description Author or administrator; removes the comment's likes too
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /comments/{id} [delete]
func (cc *CommentController) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var comment models.Comment
	if err := cc.DB.First(&comment, id).Error; err != nil {
		return utils.NotFound(c, "Comment not found")
	}

	if comment.UserID != user.ID && !user.IsAdmin() {
		return utils.Forbidden(c, "Only the author or an administrator may delete this comment")
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("comment_id = ?", comment.ID).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Comment{}, comment.ID).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete comment")
	}

	recomputeReputation(cc.DB, comment.UserID)

	return utils.SuccessMessage(c, fiber.StatusOK, "Comment deleted")
}
