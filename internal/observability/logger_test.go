package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerTagsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "notifyd")
	logger.Info().Str("event", "ping").Msg("webhook_received")

	out := buf.String()
	assert.Contains(t, out, "notifyd")
	assert.Contains(t, out, "webhook_received")
	assert.Contains(t, out, "ping")
}
