package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsThreadedText(t *testing.T) {
	var gotKey string
	var gotPayload chatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("threadKey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	err := c.Send(context.Background(), Message{
		Kind:      "plain",
		Text:      "👌 Pull Request *fix the thing* has been merged",
		ThreadKey: "pull_request_repo_42",
		URL:       "https://github.com/org/repo/pull/7",
	})
	require.NoError(t, err)

	assert.Equal(t, "pull_request_repo_42", gotKey)
	require.NotNil(t, gotPayload.Thread)
	assert.Equal(t, "pull_request_repo_42", gotPayload.Thread.ThreadKey)
	assert.Contains(t, gotPayload.Text, "https://github.com/org/repo/pull/7")
}

func TestSendDoesNotDuplicateURL(t *testing.T) {
	var gotPayload chatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	text := "🆕 https://github.com/org/repo/pull/8 a new Pull Request has been *opened*!"
	err := c.Send(context.Background(), Message{
		Kind: "plain",
		Text: text,
		URL:  "https://github.com/org/repo/pull/8",
	})
	require.NoError(t, err)
	assert.Equal(t, text, gotPayload.Text)
}

func TestSendReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zerolog.Nop())
	err := c.Send(context.Background(), Message{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNopSenderSwallowsEverything(t *testing.T) {
	assert.NoError(t, Nop{}.Send(context.Background(), Message{Text: "ignored"}))
}
