package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcops/notifyd/internal/config"
	"github.com/srcops/notifyd/internal/webhook"
)

const testSecret = "s3cret"

func newTestServer(t *testing.T, d *webhook.Dispatcher) *Server {
	t.Helper()
	if d == nil {
		d = webhook.NewDispatcher(zerolog.Nop())
	}
	return New(config.ServerConfig{Addr: ":0"}, testSecret, d, zerolog.Nop())
}

func postWebhook(s *Server, event, delivery string, body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewReader(body))
	if sign {
		req.Header.Set(webhook.SignatureHeader, webhook.Sign(testSecret, body))
	}
	if event != "" {
		req.Header.Set("X-GitHub-Event", event)
	}
	if delivery != "" {
		req.Header.Set("X-GitHub-Delivery", delivery)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestWebhookAcceptsSignedDelivery(t *testing.T) {
	d := webhook.NewDispatcher(zerolog.Nop())
	var handled atomic.Int32
	d.OnActions("pull_request", []string{"opened"}, func(ctx context.Context, p webhook.Payload) error {
		handled.Add(1)
		return nil
	})
	s := newTestServer(t, d)

	body := []byte(`{"action":"opened","pull_request":{"title":"hi"},"repository":{"name":"repo"}}`)
	w := postWebhook(s, "pull_request", "delivery-1", body, true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "delivery-1")
	assert.Equal(t, int32(1), handled.Load())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t, nil)
	body := []byte(`{"action":"opened"}`)

	req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, "sha256=deadbeef")
	req.Header.Set("X-GitHub-Event", "pull_request")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	s := newTestServer(t, nil)
	w := postWebhook(s, "pull_request", "", []byte(`{}`), false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMissingEventHeader(t *testing.T) {
	s := newTestServer(t, nil)
	w := postWebhook(s, "", "", []byte(`{}`), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsUndecodablePayload(t *testing.T) {
	s := newTestServer(t, nil)
	w := postWebhook(s, "pull_request", "", []byte(`{not json`), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookAssignsDeliveryID(t *testing.T) {
	s := newTestServer(t, nil)
	w := postWebhook(s, "ping", "", []byte(`{"zen":"ok"}`), true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "delivery")
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	s := newTestServer(t, nil)

	// Drive one request through the middleware so the counter family exists.
	warm := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Engine().ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notifyd_http_requests_total")
}
