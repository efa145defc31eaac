package controllers

import (
	"errors"
	"time"

	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new account. Teacher accounts start unapproved.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "Registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Username == "" || input.Password == "" || input.Email == "" ||
		input.FirstName == "" || input.LastName == "" {
		return utils.BadRequest(c, "All fields are required")
	}

	switch input.Role {
	case "":
		input.Role = models.RoleStudent
	case models.RoleStudent, models.RoleTeacher:
	default:
		// админом можно стать только через панель, не через регистрацию
		return utils.BadRequest(c, "Invalid role")
	}

	var existing models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&existing).Error; err == nil {
		return utils.Conflict(c, "Username already taken")
	}
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.Conflict(c, "Email already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		Approved:     input.Role != models.RoleTeacher,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"role":             user.Role,
		"pending_approval": !user.Approved,
	})
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and establishes a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateSessionToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(72 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
			"avatar":     user.Avatar,
			"reputation": user.Reputation,
			// Неодобренный учитель может войти, но не может публиковать
			"pending_approval": !user.Approved,
		},
	})
}

// Logout godoc
// @Summary Logout
// @Description Clears the session cookie. Idempotent.
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [get]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     utils.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return utils.SuccessMessage(c, fiber.StatusOK, "Logged out")
}
