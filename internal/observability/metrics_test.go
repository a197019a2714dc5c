package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("POST", "/webhook/github", 200, 12*time.Millisecond)
	RecordWebhookEvent("pull_request", "closed", "handled")
	RecordWebhookEvent("ping", "", "handled")
	RecordNotification("plain", "sent")
	RecordGitHubRequest("POST", "reviews", 202, 40*time.Millisecond)
}
