package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"muschats/backend/config"
	"muschats/backend/models"
	"muschats/backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newModeratedApp wires a second app over the shared test database,
// pointing the moderation gate at the given stub endpoint.
func newModeratedApp(url string) *fiber.App {
	moderatedCfg := &config.Config{
		JWTSecret:        cfg.JWTSecret,
		UploadDir:        cfg.UploadDir,
		ModerationAPIURL: url,
		ModerationAPIKey: "test-key",
	}
	moderated := fiber.New()
	routes.SetupRoutes(moderated, db, moderatedCfg)
	return moderated
}

func postDiscussion(t *testing.T, target *fiber.App, token, title, content string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"title": title, "content": content})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/discussions", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := target.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestModerationRejectsFlaggedContent(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{
				"flagged": true,
				"categories": map[string]bool{
					"harassment": true,
					"hate":       true,
					"violence":   false,
				},
			}},
		})
	}))
	defer stub.Close()

	user := createUser(uniqueName("poster"), models.RoleStudent, true)
	token := login(user.Username)

	resp := postDiscussion(t, newModeratedApp(stub.URL), token, "Bad title", "Bad content")
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "harassment, hate", details["reason"])
}

func TestModerationFailsOpenOnServerError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer stub.Close()

	user := createUser(uniqueName("poster"), models.RoleStudent, true)
	token := login(user.Username)

	resp := postDiscussion(t, newModeratedApp(stub.URL), token, "Fine title", "Fine content")
	resp.Body.Close()
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestModerationFailsOpenWhenUnreachable(t *testing.T) {
	user := createUser(uniqueName("poster"), models.RoleStudent, true)
	token := login(user.Username)

	// Порт без слушателя
	resp := postDiscussion(t, newModeratedApp("http://127.0.0.1:1/v1/moderations"), token,
		"Fine title", "Fine content")
	resp.Body.Close()
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestModerationGateCoversEdits(t *testing.T) {
	flagged := false
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{
				"flagged":    flagged,
				"categories": map[string]bool{"spam": flagged},
			}},
		})
	}))
	defer stub.Close()

	moderated := newModeratedApp(stub.URL)
	user := createUser(uniqueName("editor"), models.RoleStudent, true)
	token := login(user.Username)

	resp := postDiscussion(t, moderated, token, "Clean", "Clean content")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := dataOf(resp)
	resp.Body.Close()
	id := int(data["id"].(float64))

	// Теперь классификатор помечает все подряд — правка отклоняется
	flagged = true
	raw, _ := json.Marshal(map[string]string{"title": "Edited", "content": "Edited"})
	req := httptest.NewRequest("PUT", "/api/discussions/"+itoa(uint(id)), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	editResp, err := moderated.Test(req, -1)
	require.NoError(t, err)
	editResp.Body.Close()
	assert.Equal(t, fiber.StatusUnprocessableEntity, editResp.StatusCode)
}
