package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"muschats/backend/config"

	"github.com/stretchr/testify/assert"
)

func newTestClient(url string) *Client {
	return NewClient(&config.Config{
		ModerationAPIURL: url,
		ModerationAPIKey: "key",
	})
}

func TestCheckFlagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some text", req.Input)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{
				"flagged": true,
				"categories": map[string]bool{
					"violence": true,
					"hate":     true,
					"sexual":   false,
				},
			}},
		})
	}))
	defer server.Close()

	result := newTestClient(server.URL).Check(context.Background(), "some text")
	assert.False(t, result.Safe)
	// Категории в детерминированном порядке
	assert.Equal(t, "hate, violence", result.Reason)
}

func TestCheckClean(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{
				"flagged":    false,
				"categories": map[string]bool{},
			}},
		})
	}))
	defer server.Close()

	result := newTestClient(server.URL).Check(context.Background(), "hello")
	assert.True(t, result.Safe)
	assert.Empty(t, result.Reason)
}

func TestCheckFailsOpen(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		client := NewClient(&config.Config{})
		assert.True(t, client.Check(context.Background(), "anything").Safe)
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()
		assert.True(t, newTestClient(server.URL).Check(context.Background(), "x").Safe)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()
		assert.True(t, newTestClient(server.URL).Check(context.Background(), "x").Safe)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		assert.True(t, newTestClient("http://127.0.0.1:1").Check(context.Background(), "x").Safe)
	})
}
