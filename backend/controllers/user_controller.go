package controllers

import (
	"muschats/backend/config"
	"muschats/backend/middleware"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// UpdateProfileInput uses pointers so that an absent field and an
// empty field are distinguishable: nil means "leave unchanged".
type UpdateProfileInput struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	Bio         *string `json:"bio"`
	OldPassword *string `json:"old_password"`
	NewPassword *string `json:"new_password"`
}

// GetProfile godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"avatar":     user.Avatar,
		"bio":        user.Bio,
		"approved":   user.Approved,
		"reputation": user.Reputation,
		"created_at": user.CreatedAt,
	})
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Partial update; omitted fields are left as they are
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileInput true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Username != nil && *input.Username != user.Username {
		if *input.Username == "" {
			return utils.BadRequest(c, "Username cannot be empty")
		}
		var existing models.User
		if err := uc.DB.Where("username = ?", *input.Username).First(&existing).Error; err == nil {
			return utils.Conflict(c, "Username already taken")
		}
		user.Username = *input.Username
	}

	if input.Email != nil && *input.Email != user.Email {
		if *input.Email == "" {
			return utils.BadRequest(c, "Email cannot be empty")
		}
		var existing models.User
		if err := uc.DB.Where("email = ?", *input.Email).First(&existing).Error; err == nil {
			return utils.Conflict(c, "Email already taken")
		}
		user.Email = *input.Email
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if input.NewPassword != nil && *input.NewPassword != "" {
		if input.OldPassword == nil {
			return utils.BadRequest(c, "Old password is required to set new password")
		}
		// Проверяем старый пароль
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Invalid old password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := uc.DB.Save(user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "Profile updated")
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Description Multipart upload; the image is resized and stored on disk
// @Tags users
// @Accept mpfd
// @Produce json
// @Param avatar formData file true "Image file (jpeg or png)"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /profile/avatar [post]
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return utils.BadRequest(c, "Avatar file is required")
	}

	name, err := utils.SaveAvatar(file, user.ID, uc.Cfg.UploadDir)
	if err != nil {
		if err == utils.ErrUnsupportedImage {
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalServerError(c, "Could not save avatar")
	}

	user.Avatar = name
	if err := uc.DB.Save(user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"avatar": name})
}

// PublicProfile godoc
// @Summary Public profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{username} [get]
func (uc *UserController) PublicProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var user models.User
	if err := uc.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var discussions []models.Discussion
	uc.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&discussions)

	discussionViews := make([]fiber.Map, 0, len(discussions))
	for _, d := range discussions {
		discussionViews = append(discussionViews, fiber.Map{
			"id":         d.ID,
			"title":      d.Title,
			"created_at": d.CreatedAt,
			"like_count": discussionLikeCount(uc.DB, d.ID),
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"role":        user.Role,
		"avatar":      user.Avatar,
		"bio":         user.Bio,
		"reputation":  user.Reputation,
		"discussions": discussionViews,
	})
}

// Leaderboard godoc
// @Summary Reputation leaderboard
// @Description Top 10 users ordered by reputation
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /leaderboard [get]
func (uc *UserController) Leaderboard(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("reputation DESC, username ASC").
		Limit(10).
		Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch leaderboard")
	}

	views := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		views = append(views, fiber.Map{
			"id":         u.ID,
			"username":   u.Username,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"avatar":     u.Avatar,
			"reputation": u.Reputation,
		})
	}

	return utils.Success(c, fiber.StatusOK, views)
}
