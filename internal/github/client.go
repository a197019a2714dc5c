package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/srcops/notifyd/internal/backoff"
	"github.com/srcops/notifyd/internal/observability"
)

const (
	defaultTimeout = 10 * time.Second
	maxAttempts    = 3

	// GitHub grants 5000 requests/hour to authenticated apps; a small
	// steady-state limiter keeps bursts from automated event storms in check.
	requestsPerSecond = 5
	burstSize         = 10
)

// Client is a minimal GitHub REST v3 client covering the bot's side effects.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoff    backoff.Config
	logger     zerolog.Logger

	// rng feeds retry jitter and is shared by concurrent deliveries.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewClient(baseURL, token string, logger zerolog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		backoff:    backoff.DefaultConfig(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger,
	}
}

// resolve turns payload-provided absolute API URLs or relative paths into a
// request URL under the configured base. Absolute URLs from webhook payloads
// are re-rooted so a test or proxy base is always honored.
func (c *Client) resolve(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "https://") || strings.HasPrefix(target, "http://") {
		if idx := strings.Index(target, "/repos/"); idx >= 0 {
			return c.baseURL + target[idx:]
		}
		return target
	}
	return c.baseURL + "/" + strings.TrimLeft(target, "/")
}

func (c *Client) do(ctx context.Context, method, target, endpoint string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("github: marshal %s request: %w", endpoint, err)
		}
	}

	url := c.resolve(target)
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("github: build %s request: %w", endpoint, err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("github: %s request failed: %w", endpoint, err)
			observability.RecordGitHubRequest(method, endpoint, 0, time.Since(start))
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			observability.RecordGitHubRequest(method, endpoint, resp.StatusCode, time.Since(start))
			if readErr != nil {
				lastErr = fmt.Errorf("github: read %s response: %w", endpoint, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return respBody, nil
			} else {
				lastErr = parseAPIError(resp.StatusCode, endpoint, respBody)
				var apiErr *APIError
				if errors.As(lastErr, &apiErr) && !apiErr.Retryable() {
					return nil, lastErr
				}
			}
		}

		if attempt < maxAttempts {
			delay := c.nextDelay(attempt)
			c.logger.Warn().
				Err(lastErr).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("retry_in", delay).
				Msg("github_request_retry")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, lastErr
}

func (c *Client) nextDelay(attempt int) time.Duration {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return backoff.NextDelay(c.backoff, attempt, c.rng)
}

func parseAPIError(status int, endpoint string, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}
	return &APIError{StatusCode: status, Endpoint: endpoint, Message: message}
}

// ApprovePullRequest submits an APPROVE review on a pull request.
// prURL is the API url of the pull request from the webhook payload.
func (c *Client) ApprovePullRequest(ctx context.Context, prURL, body string) error {
	_, err := c.do(ctx, http.MethodPost, prURL+"/reviews", "reviews", map[string]string{
		"body":  body,
		"event": "APPROVE",
	})
	return err
}

// AddLabels appends labels to an issue or pull request.
func (c *Client) AddLabels(ctx context.Context, issueURL string, labels []string) error {
	_, err := c.do(ctx, http.MethodPost, issueURL+"/labels", "labels", map[string][]string{
		"labels": labels,
	})
	return err
}

// AddAssignees assigns users to an issue.
func (c *Client) AddAssignees(ctx context.Context, issueURL string, assignees []string) error {
	_, err := c.do(ctx, http.MethodPost, issueURL+"/assignees", "assignees", map[string][]string{
		"assignees": assignees,
	})
	return err
}

// CreateComment posts a comment on an issue under the repository API url.
func (c *Client) CreateComment(ctx context.Context, repoURL string, issueNumber int, body string) error {
	target := fmt.Sprintf("%s/issues/%d/comments", repoURL, issueNumber)
	_, err := c.do(ctx, http.MethodPost, target, "comments", map[string]string{
		"body": body,
	})
	return err
}

// CloseIssue patches an issue to state closed.
func (c *Client) CloseIssue(ctx context.Context, repoURL string, issueNumber int) error {
	target := fmt.Sprintf("%s/issues/%d", repoURL, issueNumber)
	_, err := c.do(ctx, http.MethodPatch, target, "issues", map[string]string{
		"state": "closed",
	})
	return err
}

// CreateTag creates an annotated tag object and returns its sha.
func (c *Client) CreateTag(ctx context.Context, repoURL, tag, message, commitSHA string) (string, error) {
	respBody, err := c.do(ctx, http.MethodPost, repoURL+"/git/tags", "git_tags", map[string]string{
		"tag":     tag,
		"message": message,
		"object":  commitSHA,
		"type":    "commit",
	})
	if err != nil {
		return "", err
	}
	var resp struct {
		SHA string `json:"sha"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("github: parse git_tags response: %w", err)
	}
	if resp.SHA == "" {
		return "", fmt.Errorf("github: git_tags response missing sha")
	}
	return resp.SHA, nil
}

// CreateRef creates a reference (e.g. refs/tags/v1.2.3) pointing at a sha.
func (c *Client) CreateRef(ctx context.Context, repoURL, ref, sha string) error {
	_, err := c.do(ctx, http.MethodPost, repoURL+"/git/refs", "git_refs", map[string]string{
		"ref": ref,
		"sha": sha,
	})
	return err
}
