package controllers

import (
	"errors"
	"strconv"
	"strings"

	"muschats/backend/config"
	"muschats/backend/middleware"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LikeController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewLikeController(db *gorm.DB, cfg *config.Config) *LikeController {
	return &LikeController{DB: db, Cfg: cfg}
}

// recomputeReputation rebuilds the persisted reputation cache for one
// user: likes received on their discussions plus likes received on
// their comments.
func recomputeReputation(db *gorm.DB, userID uint) {
	var discussionLikes, commentLikes int64

	db.Model(&models.DiscussionLike{}).
		Joins("JOIN discussions ON discussions.id = discussion_likes.discussion_id").
		Where("discussions.user_id = ?", userID).
		Count(&discussionLikes)

	db.Model(&models.CommentLike{}).
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comments.user_id = ?", userID).
		Count(&commentLikes)

	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("reputation", discussionLikes+commentLikes).Error; err != nil {
		utils.LogError("reputation update failed",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

// isDuplicateKey reports whether err is a unique constraint violation.
// Two concurrent toggles from the same user race on the composite
// index; the losing insert is a benign no-op, not a failure.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// ToggleDiscussionLike godoc
// @Summary Like or unlike a discussion
// @Tags likes
// @Produce json
// @Param id path int true "Discussion ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /like/discussion/{id} [post]
func (lc *LikeController) ToggleDiscussionLike(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid discussion ID")
	}

	var discussion models.Discussion
	if err := lc.DB.First(&discussion, id).Error; err != nil {
		return utils.NotFound(c, "Discussion not found")
	}

	liked := false
	var existing models.DiscussionLike
	err = lc.DB.Where("user_id = ? AND discussion_id = ?", user.ID, discussion.ID).
		First(&existing).Error
	if err == nil {
		if err := lc.DB.Unscoped().Delete(&existing).Error; err != nil {
			return utils.InternalServerError(c, "Could not remove like")
		}
	} else {
		like := models.DiscussionLike{UserID: user.ID, DiscussionID: discussion.ID}
		if err := lc.DB.Create(&like).Error; err != nil && !isDuplicateKey(err) {
			return utils.InternalServerError(c, "Could not save like")
		}
		liked = true
	}

	recomputeReputation(lc.DB, discussion.UserID)

	return c.JSON(fiber.Map{
		"success":    true,
		"liked":      liked,
		"like_count": discussionLikeCount(lc.DB, discussion.ID),
	})
}

// ToggleCommentLike godoc
// @Summary Like or unlike a comment
// @Tags likes
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /like/comment/{id} [post]
func (lc *LikeController) ToggleCommentLike(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid comment ID")
	}

	var comment models.Comment
	if err := lc.DB.First(&comment, id).Error; err != nil {
		return utils.NotFound(c, "Comment not found")
	}

	liked := false
	var existing models.CommentLike
	err = lc.DB.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).
		First(&existing).Error
	if err == nil {
		if err := lc.DB.Unscoped().Delete(&existing).Error; err != nil {
			return utils.InternalServerError(c, "Could not remove like")
		}
	} else {
		like := models.CommentLike{UserID: user.ID, CommentID: comment.ID}
		if err := lc.DB.Create(&like).Error; err != nil && !isDuplicateKey(err) {
			return utils.InternalServerError(c, "Could not save like")
		}
		liked = true
	}

	recomputeReputation(lc.DB, comment.UserID)

	return c.JSON(fiber.Map{
		"success":    true,
		"liked":      liked,
		"like_count": commentLikeCount(lc.DB, comment.ID),
	})
}

// reconcileSiteLikeCounter brings the legacy singleton back in line
// with the site_likes table and returns the count.
func reconcileSiteLikeCounter(db *gorm.DB) int64 {
	var count int64
	db.Model(&models.SiteLike{}).Count(&count)

	var counter models.SiteLikeCounter
	if err := db.First(&counter).Error; err != nil {
		counter = models.SiteLikeCounter{Count: count}
		db.Create(&counter)
		return count
	}
	if counter.Count != count {
		utils.LogWarn("site like counter drifted",
			zap.Int64("stored", counter.Count), zap.Int64("actual", count))
		counter.Count = count
		db.Save(&counter)
	}
	return count
}

// SiteLike godoc
// @Summary Legacy site-wide like
// @Description One like per user; a repeat call is a no-op with a notice
// @Tags likes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /sitelike [post]
func (lc *LikeController) SiteLike(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var existing models.SiteLike
	if err := lc.DB.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{
			"success":    false,
			"message":    "You have already liked the site",
			"like_count": reconcileSiteLikeCounter(lc.DB),
		})
	}

	like := models.SiteLike{UserID: user.ID}
	if err := lc.DB.Create(&like).Error; err != nil && !isDuplicateKey(err) {
		return utils.InternalServerError(c, "Could not save like")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"like_count": reconcileSiteLikeCounter(lc.DB),
	})
}

// SiteLikeCount godoc
// @Summary Legacy site-wide like counter
// @Tags likes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sitelike [get]
func (lc *LikeController) SiteLikeCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"like_count": reconcileSiteLikeCounter(lc.DB),
	})
}
