// Package api is a thin authenticated client for the document service REST
// API. Every call is a single attempt with the bearer token injected
// per-request from the current session; failures surface as short generic
// messages for the caller to display.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrUnauthorized       = errors.New("authentication required")
)

// TokenSource supplies the current bearer token, empty when logged out.
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     tokens,
	}
}

type ListQuery struct {
	Search   string
	Category string
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthToken, error) {
	payload := map[string]string{"username": username, "password": password}
	var token domain.AuthToken
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", payload, &token); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &token, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", reg, &user); err != nil {
		return nil, ErrRegistrationFailed
	}
	return &user, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListDocuments(ctx context.Context, query ListQuery) ([]domain.Document, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	path := "/documents"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var docs []domain.Document
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	var doc domain.Document
	if err := c.doJSON(ctx, http.MethodPatch, "/documents/"+url.PathEscape(id), update, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) AddCollaborator(ctx context.Context, id, userID string) error {
	payload := map[string]string{"user_id": userID}
	return c.doJSON(ctx, http.MethodPost, "/documents/"+url.PathEscape(id)+"/collaborators", payload, nil)
}

func (c *Client) RemoveCollaborator(ctx context.Context, id, userID string) error {
	path := "/documents/" + url.PathEscape(id) + "/collaborators/" + url.PathEscape(userID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
}

// DownloadDocument streams the stored file. The caller owns the returned
// reader and must close it.
func (c *Client) DownloadDocument(ctx context.Context, id string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/documents/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.New("download failed")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, "", ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", errors.New("download failed")
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	return resp.Body, filename, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) RecentDocuments(ctx context.Context, limit int) ([]domain.Document, error) {
	path := "/dashboard/recent-documents"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var docs []domain.Document
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = strings.NewReader(string(raw))
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.New("request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return errors.New("request failed")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New("request failed")
	}
	return nil
}

func filenameFromDisposition(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" {
		return ""
	}
	return filepath.Base(name)
}
