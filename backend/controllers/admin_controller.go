package controllers

import (
	"strconv"

	"muschats/backend/config"
	"muschats/backend/middleware"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

func userSummary(u models.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}

// PendingApprovals godoc
// @Summary List unapproved users
// @Description All unapproved accounts, with unapproved teachers broken out
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/pending [get]
func (ac *AdminController) PendingApprovals(c *fiber.Ctx) error {
	var pending []models.User
	if err := ac.DB.Where("approved = ?", false).Find(&pending).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch users")
	}

	all := make([]fiber.Map, 0, len(pending))
	teachers := make([]fiber.Map, 0)
	for _, u := range pending {
		view := userSummary(u)
		all = append(all, view)
		if u.Role == models.RoleTeacher {
			teachers = append(teachers, view)
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"pending":          all,
		"pending_teachers": teachers,
	})
}

// ApproveUser godoc
// @Summary Approve a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/approve [post]
func (ac *AdminController) ApproveUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.Approved = true
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "User approved")
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes the account together with its discussions, comments and likes
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id} [delete]
func (ac *AdminController) DeleteUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if user.ID == actor.ID {
		return utils.BadRequest(c, "Cannot delete your own account")
	}

	// Авторы, у которых удаляемый пользователь что-то лайкал —
	// их репутацию нужно пересчитать после очистки
	var likedDiscussionAuthors, likedCommentAuthors []uint
	ac.DB.Model(&models.DiscussionLike{}).
		Joins("JOIN discussions ON discussions.id = discussion_likes.discussion_id").
		Where("discussion_likes.user_id = ?", user.ID).
		Distinct().
		Pluck("discussions.user_id", &likedDiscussionAuthors)
	ac.DB.Model(&models.CommentLike{}).
		Joins("JOIN comments ON comments.id = comment_likes.comment_id").
		Where("comment_likes.user_id = ?", user.ID).
		Distinct().
		Pluck("comments.user_id", &likedCommentAuthors)

	// Авторы комментариев в дискуссиях пользователя — их лайки
	// исчезают вместе с каскадом
	var bystanderCommentAuthors []uint
	ac.DB.Model(&models.Comment{}).
		Joins("JOIN discussions ON discussions.id = comments.discussion_id").
		Where("discussions.user_id = ?", user.ID).
		Distinct().
		Pluck("comments.user_id", &bystanderCommentAuthors)

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		// Дискуссии пользователя вместе с их каскадами
		var discussionIDs []uint
		if err := tx.Model(&models.Discussion{}).
			Where("user_id = ?", user.ID).
			Pluck("id", &discussionIDs).Error; err != nil {
			return err
		}
		for _, discussionID := range discussionIDs {
			if err := deleteDiscussionCascade(tx, discussionID); err != nil {
				return err
			}
		}

		// Комментарии пользователя в чужих дискуссиях
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("user_id = ?", user.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Unscoped().Where("comment_id IN ?", commentIDs).
				Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", commentIDs).
				Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		// Лайки, которые пользователь ставил сам
		if err := tx.Unscoped().Where("user_id = ?", user.ID).
			Delete(&models.DiscussionLike{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).
			Delete(&models.SiteLike{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete user")
	}

	for _, authorID := range likedDiscussionAuthors {
		recomputeReputation(ac.DB, authorID)
	}
	for _, authorID := range likedCommentAuthors {
		recomputeReputation(ac.DB, authorID)
	}
	for _, authorID := range bystanderCommentAuthors {
		recomputeReputation(ac.DB, authorID)
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "User deleted")
}
