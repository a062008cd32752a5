package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// deletionSecretHeader carries the deletion secret on DELETE requests
const deletionSecretHeader = "X-Deletion-Secret"

// Client is an HTTP client for the link API
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// API calls must see redirect statuses, not follow them
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// apiError decodes the server's error payload into a readable message
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

// CreateLink creates a short link
func (c *Client) CreateLink(ctx context.Context, req domain.CreateLinkRequest) (*domain.CreateLinkResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/links", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result domain.CreateLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetLink retrieves information about a short link
func (c *Client) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/links/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("code '%s' not found", code)
	case http.StatusGone:
		return nil, fmt.Errorf("code '%s' has expired", code)
	default:
		return nil, apiError(resp)
	}

	var link domain.Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &link, nil
}

// DeleteLink deletes a short link using its deletion secret
func (c *Client) DeleteLink(ctx context.Context, code, secret string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.serverURL+"/api/links/"+url.PathEscape(code), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(deletionSecretHeader, secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("code '%s' not found", code)
	case http.StatusForbidden:
		return fmt.Errorf("deletion secret rejected for code '%s'", code)
	default:
		return apiError(resp)
	}
}

// ListLinks retrieves all live links, optionally filtered by owner
func (c *Client) ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	endpoint := c.serverURL + "/api/links"
	if ownerID != "" {
		endpoint += "?owner=" + url.QueryEscape(ownerID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var links []*domain.Link
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return links, nil
}
