package tests

import (
	"net/url"
	"testing"

	"muschats/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func search(q string) map[string]interface{} {
	resp := doJSON("GET", "/api/search?q="+url.QueryEscape(q), "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		panic(resp.StatusCode)
	}
	return dataOf(resp)
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	for _, q := range []string{"", "a", " a ", "  "} {
		data := search(q)
		assert.Empty(t, data["discussions"], "query %q", q)
		assert.Empty(t, data["comments"], "query %q", q)
		assert.Empty(t, data["users"], "query %q", q)
	}
}

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	author := createUser("Zemgus_searcher", models.RoleStudent, true)
	token := login(author.Username)

	id := createDiscussion(token, "HELLO winter", "nothing here")
	addComment(token, id, "a hello from the comment")

	data := search("hello")

	discussions := data["discussions"].([]interface{})
	require.NotEmpty(t, discussions)
	found := false
	for _, raw := range discussions {
		if uint(raw.(map[string]interface{})["id"].(float64)) == id {
			found = true
		}
	}
	assert.True(t, found)

	comments := data["comments"].([]interface{})
	assert.NotEmpty(t, comments)

	users := search("zemgus")["users"].([]interface{})
	require.NotEmpty(t, users)
	assert.Equal(t, "Zemgus_searcher", users[0].(map[string]interface{})["username"])
}

func TestSearchMatchesContentAndNames(t *testing.T) {
	author := createUser(uniqueName("finder"), models.RoleStudent, true)
	db.Model(&models.User{}).Where("id = ?", author.ID).
		Updates(map[string]interface{}{"first_name": "Margarita", "last_name": "Liepa"})

	token := login(author.Username)
	createDiscussion(token, "plain title", "the BODY mentions spaceships")

	assert.NotEmpty(t, search("spaceship")["discussions"])
	assert.NotEmpty(t, search("margarita")["users"])
	assert.NotEmpty(t, search("liepa")["users"])
	assert.Empty(t, search("zzz_no_such_term")["discussions"])
}
