// Package notion is a minimal client for the Notion API: creating pages,
// appending block children and listing users for credential checks.
package notion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/starford/notion-import/internal/apperr"
	"github.com/starford/notion-import/internal/models"
)

// Defaults for the public API.
const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
	// MaxChildren is the API limit on children per append call.
	MaxChildren = 100
)

// API endpoints
const (
	epPages    = "/pages"
	epChildren = "/blocks/{id}/children"
	epUsers    = "/users"
)

// APIError is an error object returned by the API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Pages is the document API surface the page builder depends on.
type Pages interface {
	CreatePage(ctx context.Context, parentID, title string) (string, error)
	AppendBlocks(ctx context.Context, pageID string, blocks []models.Block) error
}

// Client talks to the Notion API. One Client is built per run and shared.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ Pages = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Version string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewClient sets up an API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetAuthToken(opts.Token).
		SetHeader("Notion-Version", opts.Version).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: h, logger: opts.Logger}
}

// CreatePage creates a page titled title under parentID and returns its id.
func (c *Client) CreatePage(ctx context.Context, parentID, title string) (string, error) {
	body := createPageRequest{
		Parent: parentRef{PageID: parentID},
		Properties: map[string]titleProperty{
			"title": {Title: text(title)},
		},
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, epPages, nil, body, &page); err != nil {
		return "", fmt.Errorf("notion: create page %q: %w", title, err)
	}
	if page.ID == "" {
		return "", fmt.Errorf("notion: create page %q: response without id", title)
	}
	c.logger.Debug("page created", slog.String("title", title), slog.String("id", page.ID))
	return page.ID, nil
}

// AppendBlocks attaches blocks, in order, as children of pageID in a single call.
func (c *Client) AppendBlocks(ctx context.Context, pageID string, blocks []models.Block) error {
	body := appendChildrenRequest{Children: EncodeBlocks(blocks)}
	params := map[string]string{"id": pageID}
	if err := c.do(ctx, http.MethodPatch, epChildren, params, body, nil); err != nil {
		return fmt.Errorf("notion: append %d blocks to %s: %w", len(blocks), pageID, err)
	}
	return nil
}

// ListUsers returns the workspace users visible to the integration.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var list userList
	if err := c.do(ctx, http.MethodGet, epUsers, nil, nil, &list); err != nil {
		return nil, fmt.Errorf("notion: list users: %w", err)
	}
	return list.Results, nil
}

// ValidateToken checks the integration token by listing users.
func (c *Client) ValidateToken(ctx context.Context) error {
	_, err := c.ListUsers(ctx)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidCredential, apiErr.Message)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, result any) error {
	apiErr := &APIError{}
	req := c.http.R().SetContext(ctx).SetError(apiErr)
	if params != nil {
		req.SetPathParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode()
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return apiErr
	}
	return nil
}
