package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	containerStatusFinished = "FINISHED"
	containerStatusError    = "ERROR"
)

// apiError carries the upstream HTTP status and error body so failures stay
// diagnosable from the logs alone.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// graphClient is the HTTP plumbing shared by the Meta-shaped platform APIs:
// container creation, bounded status polling and publishing. Both Instagram
// and Threads speak this dialect; only the base URL and the name of the
// status field differ.
type graphClient struct {
	baseURL         string
	statusField     string
	http            *http.Client
	pollInterval    time.Duration
	pollMaxAttempts int
	sleep           func(time.Duration)
}

func newGraphClient(baseURL, version, statusField string, pollInterval time.Duration, pollMaxAttempts int) *graphClient {
	return &graphClient{
		baseURL:         strings.TrimRight(baseURL, "/") + "/" + version,
		statusField:     statusField,
		http:            &http.Client{Timeout: 5 * time.Minute},
		pollInterval:    pollInterval,
		pollMaxAttempts: pollMaxAttempts,
		sleep:           time.Sleep,
	}
}

// postForID issues a POST with query parameters (the dialect the Graph APIs
// document) and returns the identifier from the response.
func (c *graphClient) postForID(ctx context.Context, path string, params url.Values) (string, error) {
	body, err := c.do(ctx, http.MethodPost, path, params)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no identifier returned by %s", path)
	}
	return result.ID, nil
}

// pollContainer queries a container's processing status at a fixed interval
// until it finishes, reports an error, or the attempt budget runs out.
func (c *graphClient) pollContainer(ctx context.Context, containerID, accessToken string) error {
	params := url.Values{}
	params.Set("fields", c.statusField+",error_message")
	params.Set("access_token", accessToken)

	for attempt := 0; attempt < c.pollMaxAttempts; attempt++ {
		body, err := c.do(ctx, http.MethodGet, containerID, params)
		if err != nil {
			return fmt.Errorf("failed to check container %s status: %w", containerID, err)
		}

		var status struct {
			StatusCode   string `json:"status_code"`
			Status       string `json:"status"`
			ErrorMessage string `json:"error_message"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return fmt.Errorf("failed to parse container %s status: %w", containerID, err)
		}

		state := status.StatusCode
		if state == "" {
			state = status.Status
		}

		switch state {
		case containerStatusFinished:
			slog.Info("container ready", "container", containerID)
			return nil
		case containerStatusError:
			reason := status.ErrorMessage
			if reason == "" {
				reason = "no error message provided"
			}
			return fmt.Errorf("container %s failed to process: %s", containerID, reason)
		}

		slog.Info("container still processing", "container", containerID, "state", state)
		c.sleep(c.pollInterval)
	}
	return fmt.Errorf("container %s timed out processing after %d attempts", containerID, c.pollMaxAttempts)
}

func (c *graphClient) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "/" + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
