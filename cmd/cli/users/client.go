package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// User is a user record as the API returns it.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}

// APIError is a non-success response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// Client talks to the /api/users endpoints.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ==========================
// Operations
// ==========================
func (c *Client) List(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, http.StatusOK, &users)
	return users, err
}

func (c *Client) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, userPath(id), nil, http.StatusOK, &u)
	return u, err
}

func (c *Client) Create(ctx context.Context, username string) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/api/users", map[string]string{"username": username}, http.StatusCreated, &u)
	return u, err
}

func (c *Client) Update(ctx context.Context, id int64, username string) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPatch, userPath(id), map[string]string{"username": username}, http.StatusOK, &u)
	return u, err
}

// Delete succeeds only on 204 No Content.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, http.StatusNoContent, nil)
}

func userPath(id int64) string {
	return "/api/users/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// newAPIError prefers the API's {"error": ...} message and falls back to the raw body.
func newAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
