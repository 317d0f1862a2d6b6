// Package github provides an HTTP client for the GitHub REST API covering
// the triage workflow: listing open pull requests, fetching PR detail and
// raw diffs, and posting reviews.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
	"github.com/prtriage/prtriage/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	providerName = "github"
	apiVersion   = "2022-11-28"
)

// Client is an HTTP client for the GitHub REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
}

// NewClient creates a GitHub API client. The token is a personal access
// token or a GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the transport retry policy.
func (c *Client) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// ListOpenPullRequests returns the repository's open PRs, oldest first as
// GitHub returns them. When assignee is non-empty only PRs assigned to that
// login (or with a review requested from it) are included.
//
// The list endpoint omits additions/deletions/changed_files, so each
// surviving PR costs one extra detail fetch. Calls are sequential; the
// triage loop has no concurrency to feed anyway.
func (c *Client) ListOpenPullRequests(ctx context.Context, owner, repo, assignee string) ([]domain.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=open&per_page=100", c.baseURL, owner, repo)

	body, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}

	var payloads []pullRequestPayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("parse pull request list: %w", err)
	}

	var prs []domain.PullRequest
	for _, p := range payloads {
		if assignee != "" && !assignedTo(p, assignee) {
			continue
		}
		detail, err := c.GetPullRequest(ctx, owner, repo, p.Number)
		if err != nil {
			return nil, fmt.Errorf("fetch PR #%d detail: %w", p.Number, err)
		}
		prs = append(prs, detail)
	}

	return prs, nil
}

// GetPullRequest fetches a single PR with its size counters populated.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (domain.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)

	body, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return domain.PullRequest{}, err
	}

	var payload pullRequestPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.PullRequest{}, fmt.Errorf("parse pull request: %w", err)
	}
	return payload.toDomain(), nil
}

// GetPullRequestDiff fetches the PR's unified diff as text.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)

	body, err := c.get(ctx, url, "application/vnd.github.v3.diff")
	if err != nil {
		return "", fmt.Errorf("fetch diff for PR #%d: %w", number, err)
	}
	return string(body), nil
}

// CreateReview posts a pull request review. Comment lines must already be
// new-file absolute line numbers; comments without an anchor are folded
// into the review body.
func (c *Client) CreateReview(ctx context.Context, input CreateReviewInput) (*CreateReviewResponse, error) {
	reqBody := buildCreateReviewRequest(input)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal review request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews",
		c.baseURL, input.Owner, input.Repo, input.PullNumber)

	var resp *http.Response
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: reqErr.Error(), Provider: providerName}
		}
		c.setHeaders(req, "application/vnd.github+json")

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeTimeout, Message: callErr.Error(), Retryable: true, Provider: providerName}
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return errorFromResponse(resp.StatusCode, body)
		}
		return nil
	}, c.retryConf)
	if err != nil {
		return nil, fmt.Errorf("create review for PR #%d: %w", input.PullNumber, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read review response: %w", err)
	}

	var result CreateReviewResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse review response: %w", err)
	}
	return &result, nil
}

// get performs a GET with retry and returns the raw body.
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	var resp *http.Response
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeUnknown, Message: reqErr.Error(), Provider: providerName}
		}
		c.setHeaders(req, accept)

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			return &llmhttp.Error{Type: llmhttp.ErrTypeTimeout, Message: callErr.Error(), Retryable: true, Provider: providerName}
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return errorFromResponse(resp.StatusCode, body)
		}
		return nil
	}, c.retryConf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if req.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
}

// assignedTo reports whether the PR is assigned to login or has a review
// requested from it. GitHub logins are case-insensitive.
func assignedTo(p pullRequestPayload, login string) bool {
	for _, u := range p.Assignees {
		if strings.EqualFold(u.Login, login) {
			return true
		}
	}
	for _, u := range p.RequestedReviewers {
		if strings.EqualFold(u.Login, login) {
			return true
		}
	}
	return false
}

// errorFromResponse maps an error status to a typed error, preferring
// GitHub's own message when the body parses.
func errorFromResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	return llmhttp.MapStatusError(providerName, statusCode, message)
}
