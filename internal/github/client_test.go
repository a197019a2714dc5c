package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-token", zerolog.Nop())
	c.backoff.InitialDelay = 0
	c.backoff.MaxDelay = 0
	return c, srv
}

func TestApprovePullRequestSendsReview(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	prURL := srv.URL + "/repos/org/repo/pulls/7"
	err := c.ApprovePullRequest(context.Background(), prURL, "auto-approve")
	require.NoError(t, err)
	assert.Equal(t, "/repos/org/repo/pulls/7/reviews", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "APPROVE", gotBody["event"])
	assert.Equal(t, "auto-approve", gotBody["body"])
}

func TestAccepted202IsSuccess(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	err := c.AddLabels(context.Background(), "/repos/org/repo/issues/7", []string{"approved", "ok-to-test"})
	require.NoError(t, err)
}

func TestRetriesOn500ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	err := c.AddLabels(context.Background(), "/repos/org/repo/issues/7", []string{"bot"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	err := c.CloseIssue(context.Background(), "/repos/org/repo", 9)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateTagReturnsSHA(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/org/repo/git/tags", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "commit", body["type"])
		assert.Equal(t, "v1.2.3", body["tag"])
		_ = json.NewEncoder(w).Encode(map[string]string{"sha": "tagsha123"})
	}))
	sha, err := c.CreateTag(context.Background(), "/repos/org/repo", "v1.2.3", "v1.2.3", "commitsha")
	require.NoError(t, err)
	assert.Equal(t, "tagsha123", sha)
}

func TestConcurrentRetriesWithJitter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "test-token", zerolog.Nop())
	c.backoff.InitialDelay = time.Nanosecond
	c.backoff.MaxDelay = time.Microsecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			prURL := fmt.Sprintf("%s/repos/org/repo/pulls/%d", srv.URL, n)
			err := c.ApprovePullRequest(context.Background(), prURL, "auto-approve")
			assert.Error(t, err)
			assert.True(t, IsStatus(err, http.StatusInternalServerError))
		}(i)
	}
	wg.Wait()
}

func TestResolveRerootsAbsolutePayloadURLs(t *testing.T) {
	c := NewClient("https://proxy.example", "", zerolog.Nop())
	got := c.resolve("https://api.github.com/repos/org/repo/pulls/1")
	assert.Equal(t, "https://proxy.example/repos/org/repo/pulls/1", got)

	got = c.resolve("repos/org/repo")
	assert.Equal(t, "https://proxy.example/repos/org/repo", got)
}
