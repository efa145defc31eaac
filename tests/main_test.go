package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"

	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/routes"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app        *fiber.App
	db         *gorm.DB
	cfg        *config.Config
	adminToken string
	nameSeq    atomic.Int64
)

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	os.Exit(code)
}

func setup() {
	uploadDir, err := os.MkdirTemp("", "muschats-uploads")
	if err != nil {
		panic(err)
	}

	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
		UploadDir:  uploadDir,
		// Модерация не настроена — gate пропускает все (fail-open)
	}

	db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if err := utils.Migrate(db); err != nil {
		panic(err)
	}

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg)

	admin := createUser("site_admin", models.RoleAdmin, true)
	adminToken = login(admin.Username)
}

// uniqueName keeps fixtures independent between test functions.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, nameSeq.Add(1))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

const testPassword = "password123"

// createUser inserts a user row directly, bypassing the register route.
func createUser(username, role string, approved bool) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Approved:     approved,
	}
	if err := db.Create(&user).Error; err != nil {
		panic(err)
	}
	return user
}

// login returns a session token for a user created with createUser.
func login(username string) string {
	resp := doJSON("POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		panic(fmt.Sprintf("login failed for %s: status %d", username, resp.StatusCode))
	}
	body := decodeBody(resp)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

// doJSON fires a request at the test app and returns the response.
func doJSON(method, path, token string, payload interface{}) *http.Response {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			panic(err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

func decodeBody(resp *http.Response) map[string]interface{} {
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		panic(err)
	}
	return result
}

func dataOf(resp *http.Response) map[string]interface{} {
	body := decodeBody(resp)
	data, _ := body["data"].(map[string]interface{})
	return data
}

// createDiscussion posts a discussion and returns its id.
func createDiscussion(token, title, content string) uint {
	resp := doJSON("POST", "/api/discussions", token, map[string]string{
		"title":   title,
		"content": content,
	})
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		panic(fmt.Sprintf("createDiscussion failed: status %d", resp.StatusCode))
	}
	data := dataOf(resp)
	return uint(data["id"].(float64))
}

// addComment posts a comment and returns its id.
func addComment(token string, discussionID uint, content string) uint {
	resp := doJSON("POST", fmt.Sprintf("/api/discussions/%d/comments", discussionID), token,
		map[string]string{"content": content})
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		panic(fmt.Sprintf("addComment failed: status %d", resp.StatusCode))
	}
	data := dataOf(resp)
	return uint(data["id"].(float64))
}

func reputationOf(userID uint) int {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		panic(err)
	}
	return user.Reputation
}
