// Package api is the REST client used by schoolctl against the portal server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mann-lohchab/Portal/internal/model"
)

// APIError carries the server's error code along with the HTTP status.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsAuthError reports whether the server rejected our credentials or session.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that authenticates with the token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
	}
}

type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    model.Summary `json:"user"`
}

func (c *Client) Login(role model.Role, externalID, password string) (*LoginResponse, error) {
	req := map[string]string{"id": externalID, "password": password}
	var resp LoginResponse
	if err := c.post("/auth/"+string(role)+"/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(role model.Role) error {
	return c.post("/auth/"+string(role)+"/logout", nil, nil)
}

func (c *Client) Me() (*model.Summary, error) {
	var summary model.Summary
	if err := c.get("/auth/me", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

type CreatePrincipalRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (c *Client) CreatePrincipal(role model.Role, req CreatePrincipalRequest) (*model.Summary, error) {
	var summary model.Summary
	if err := c.post(collectionPath(role), req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) ListPrincipals(role model.Role) ([]model.Summary, error) {
	var summaries []model.Summary
	if err := c.get(collectionPath(role), &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Client) GetPrincipal(role model.Role, externalID string) (*model.Summary, error) {
	var summary model.Summary
	if err := c.get(collectionPath(role)+"/"+externalID, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) DeletePrincipal(role model.Role, externalID string) error {
	return c.delete(collectionPath(role) + "/" + externalID)
}

func collectionPath(role model.Role) string {
	switch role {
	case model.RoleTeacher:
		return "/teachers"
	case model.RoleStudent:
		return "/students"
	default:
		return "/" + string(role) + "s"
	}
}

func (c *Client) do(method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, &apiErr)
		return &apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil)
}
