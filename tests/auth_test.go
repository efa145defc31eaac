package tests

import (
	"testing"

	"muschats/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRegisterStudentIsApproved(t *testing.T) {
	username := uniqueName("alice")

	resp := doJSON("POST", "/api/auth/register", "", map[string]string{
		"username":   username,
		"password":   testPassword,
		"email":      username + "@example.com",
		"first_name": "Alice",
		"last_name":  "Ozola",
		"role":       models.RoleStudent,
	})
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := dataOf(resp)
	assert.Equal(t, false, data["pending_approval"])

	var user models.User
	assert.NoError(t, db.Where("username = ?", username).First(&user).Error)
	assert.True(t, user.Approved)
}

func TestRegisterTeacherPendingApproval(t *testing.T) {
	username := uniqueName("teacher")

	resp := doJSON("POST", "/api/auth/register", "", map[string]string{
		"username":   username,
		"password":   testPassword,
		"email":      username + "@example.com",
		"first_name": "Bruno",
		"last_name":  "Kalns",
		"role":       models.RoleTeacher,
	})
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := dataOf(resp)
	assert.Equal(t, true, data["pending_approval"])
}

func TestRegisterDuplicates(t *testing.T) {
	username := uniqueName("dup")
	createUser(username, models.RoleStudent, true)

	// Занятое имя пользователя
	resp := doJSON("POST", "/api/auth/register", "", map[string]string{
		"username":   username,
		"password":   testPassword,
		"email":      uniqueName("other") + "@example.com",
		"first_name": "A",
		"last_name":  "B",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Занятый email
	resp = doJSON("POST", "/api/auth/register", "", map[string]string{
		"username":   uniqueName("other"),
		"password":   testPassword,
		"email":      username + "@example.com",
		"first_name": "A",
		"last_name":  "B",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterAdminRoleRejected(t *testing.T) {
	resp := doJSON("POST", "/api/auth/register", "", map[string]string{
		"username":   uniqueName("sneaky"),
		"password":   testPassword,
		"email":      uniqueName("sneaky") + "@example.com",
		"first_name": "A",
		"last_name":  "B",
		"role":       models.RoleAdmin,
	})
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginInvalidCredentials(t *testing.T) {
	resp := doJSON("POST", "/api/auth/login", "", map[string]string{
		"username": "no_such_user",
		"password": testPassword,
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	user := createUser(uniqueName("carol"), models.RoleStudent, true)
	resp = doJSON("POST", "/api/auth/login", "", map[string]string{
		"username": user.Username,
		"password": "wrong-password",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUnapprovedTeacherCanLoginButNotPost(t *testing.T) {
	teacher := createUser(uniqueName("bob"), models.RoleTeacher, false)

	// Вход разрешен
	token := login(teacher.Username)
	assert.NotEmpty(t, token)

	// Публикация — нет
	resp := doJSON("POST", "/api/discussions", token, map[string]string{
		"title":   "Hi",
		"content": "Hello",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Администратор одобряет
	approve := doJSON("POST", "/api/admin/users/"+itoa(teacher.ID)+"/approve", adminToken, nil)
	approve.Body.Close()
	assert.Equal(t, fiber.StatusOK, approve.StatusCode)

	// Теперь публикация проходит
	resp = doJSON("POST", "/api/discussions", token, map[string]string{
		"title":   "Hi",
		"content": "Hello",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestLogoutIsIdempotent(t *testing.T) {
	for i := 0; i < 2; i++ {
		resp := doJSON("GET", "/api/auth/logout", "", nil)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	resp := doJSON("POST", "/api/discussions", "", map[string]string{
		"title":   "x",
		"content": "y",
	})
	resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
