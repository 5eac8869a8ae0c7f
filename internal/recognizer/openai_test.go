package recognizer

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
}

func TestOpenAI_Recognize(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, http.StatusOK, "Here's the text from the image: \"HEY!\"", &seen)
	defer srv.Close()

	r, err := NewOpenAI(Config{Model: "local-model", BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "openai", r.Name())

	text, err := r.Recognize(context.Background(), imaging.New(8, 8, color.White))
	require.NoError(t, err)
	assert.Equal(t, "HEY!", text)

	assert.Equal(t, "local-model", seen.Model)
	require.Len(t, seen.Messages, 1)
	require.Len(t, seen.Messages[0].Content, 2)
	assert.Equal(t, DefaultPrompt, seen.Messages[0].Content[0].Text)
	assert.True(t, strings.HasPrefix(seen.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()

	r, err := NewOpenAI(Config{Model: "m", BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	_, err = r.Recognize(context.Background(), imaging.New(4, 4, color.White))
	assert.Error(t, err)
}

func TestNewOpenAI_RequiresModel(t *testing.T) {
	_, err := NewOpenAI(Config{})
	assert.Error(t, err)
}
