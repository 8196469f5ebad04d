// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
	"github.com/aburaihan-dev/github-actions-lighthouse/lib/netutil"
)

// apiVersion pins the REST API version sent on every request.
const apiVersion = "2022-11-28"

// DefaultBaseURL is the public GitHub API root.
const DefaultBaseURL = "https://api.github.com"

// Config holds the parameters for NewClient.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL. GitHub
	// Enterprise installations use "https://<host>/api/v3". Must be
	// HTTPS.
	BaseURL string

	// Token is a personal access token or fine-grained token with
	// read access to Actions and contents. Required.
	Token string

	// HTTPClient sends every request. Defaults to http.DefaultClient.
	// Set its Timeout to bound each request.
	HTTPClient *http.Client

	// Clock drives rate limit waits. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a read-only GitHub Actions REST client. It tracks rate
// limits from response headers, retries once after a rate limit
// response, revalidates GETs with ETags, and follows Link pagination.
//
// Client is safe for concurrent use.
type Client struct {
	baseURL       string
	authorization string
	httpClient    *http.Client
	rateLimit     *rateLimitTracker
	etagCache     *etagCache
	clock         clock.Clock
	logger        *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("github: no token configured")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:       baseURL,
		authorization: "Bearer " + config.Token,
		httpClient:    httpClient,
		rateLimit:     newRateLimitTracker(clk),
		etagCache:     newETagCache(),
		clock:         clk,
		logger:        logger,
	}, nil
}

// RateLimitRemaining returns the last observed remaining request
// count, or -1 before any response carried rate limit headers.
func (client *Client) RateLimitRemaining() int {
	return client.rateLimit.snapshot()
}

// get fetches path (relative to the base URL, query included) and
// decodes the JSON body into result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	body, err := client.fetch(ctx, client.baseURL+path, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("github: decoding %s: %w", path, err)
	}
	return nil
}

// fetch performs an authenticated GET against an absolute URL and
// returns the body. A 304 is answered from the ETag cache. A rate
// limit response is retried once after the advertised backoff;
// isRetry stops a second retry.
func (client *Client) fetch(ctx context.Context, url string, isRetry bool) ([]byte, error) {
	body, _, err := client.fetchWithHeader(ctx, url, isRetry)
	return body, err
}

func (client *Client) fetchWithHeader(ctx context.Context, url string, isRetry bool) ([]byte, http.Header, error) {
	response, err := client.send(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotModified {
		if _, cached, ok := client.etagCache.lookup(url); ok {
			return cached, response.Header, nil
		}
	}

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		rateLimited := response.StatusCode == http.StatusTooManyRequests ||
			(response.StatusCode == http.StatusForbidden && isRateLimitMessage(string(body)))
		if rateLimited && !isRetry {
			if backoff := rateLimitBackoff(response.Header, client.clock.Now()); backoff > 0 {
				client.logger.Warn("github rate limited, backing off",
					"duration", backoff,
					"url", url,
				)
				select {
				case <-client.clock.After(backoff):
				case <-ctx.Done():
					return nil, nil, ctx.Err()
				}
				return client.fetchWithHeader(ctx, url, true)
			}
		}
		return nil, nil, parseAPIError(response.StatusCode, body)
	}

	if etag := response.Header.Get("ETag"); etag != "" {
		client.etagCache.put(url, etag, body)
	}
	return body, response.Header, nil
}

// send issues the request after any preemptive rate limit wait. The
// caller closes the response body.
func (client *Client) send(ctx context.Context, url string) (*http.Response, error) {
	if err := client.rateLimit.wait(ctx); err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	request.Header.Set("Authorization", client.authorization)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", apiVersion)
	if etag, _, ok := client.etagCache.lookup(url); ok {
		request.Header.Set("If-None-Match", etag)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", url, err)
	}
	client.rateLimit.update(response.Header)
	return response, nil
}

// splitRepository splits "owner/name" into its parts.
func splitRepository(repository string) (owner, name string, err error) {
	owner, name, found := strings.Cut(repository, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("github: repository %q is not in owner/name form", repository)
	}
	return owner, name, nil
}

// parseAPIError builds an APIError from a non-2xx status and body.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiError := &APIError{StatusCode: statusCode}

	var wireError struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Message != "" {
		apiError.Message = wireError.Message
		apiError.DocumentationURL = wireError.DocumentationURL
	} else {
		apiError.Message = strings.TrimSpace(string(body))
	}
	return apiError
}
