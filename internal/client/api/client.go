// Package api is the reader's HTTP client for the novel-reader backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/novel-reader/internal/client/tokenstore"
)

// Client calls the backend. All methods are safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New returns a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient returns a client using hc for transport.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, logger: logger}
}

// NewRequest builds a request for path relative to the base URL.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req. Transport failures come back as *NetworkError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read " + path, Err: err}
	}
	c.logger.Debug("response", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rejected := &RejectedError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			rejected.Code = eb.Code
			rejected.Message = eb.Message
		}
		return rejected
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Login exchanges username and password for a token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (tokenstore.UserSnapshot, error) {
	var out meResponse
	if err := c.call(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return tokenstore.UserSnapshot{}, err
	}
	return out.User, nil
}

// Refresh trades a valid token for a new one.
func (c *Client) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	var out AuthResult
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chapter fetches a chapter. An empty token fetches it anonymously.
func (c *Client) Chapter(ctx context.Context, token, chapterID string) (*ChapterResponse, error) {
	var out ChapterResponse
	if err := c.call(ctx, http.MethodGet, "/chapters/"+url.PathEscape(chapterID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Purchase buys a chapter. A non-2xx answer is a *RejectedError carrying
// the server's message.
func (c *Client) Purchase(ctx context.Context, token, chapterID string) (*PurchaseResult, error) {
	var out PurchaseResult
	if err := c.call(ctx, http.MethodPost, "/chapters/purchase/"+url.PathEscape(chapterID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IncrementStoryViews records one story view.
func (c *Client) IncrementStoryViews(ctx context.Context, storyID string) (int64, error) {
	var out viewsResponse
	path := "/stories/" + url.PathEscape(storyID) + "/increment-views"
	if err := c.call(ctx, http.MethodPost, path, "", nil, &out); err != nil {
		return 0, err
	}
	return out.Views, nil
}

// IncrementChapterViews records one chapter view.
func (c *Client) IncrementChapterViews(ctx context.Context, storyID, chapterID string) (int64, error) {
	var out viewsResponse
	path := "/stories/" + url.PathEscape(storyID) + "/chapters/" + url.PathEscape(chapterID) + "/increment-views"
	if err := c.call(ctx, http.MethodPost, path, "", nil, &out); err != nil {
		return 0, err
	}
	return out.Views, nil
}
