// Package imghost rehosts local image files on ImgBB.
package imghost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/starford/notion-import/internal/apperr"
	"github.com/starford/notion-import/internal/resources"
)

// DefaultUploadURL is the ImgBB upload endpoint.
const DefaultUploadURL = "https://api.imgbb.com/1/upload"

// UploadError is returned when the host rejects an upload.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("imghost: upload failed: HTTP %d", e.Status)
	}
	return fmt.Sprintf("imghost: upload failed: HTTP %d: %s", e.Status, e.Message)
}

// Uploader rehosts a local file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Client uploads images to ImgBB.
type Client struct {
	http      *resty.Client
	uploadURL string
	apiKey    string
	logger    *slog.Logger
}

var _ Uploader = (*Client)(nil)

// NewClient creates an ImgBB client. An empty uploadURL selects DefaultUploadURL.
func NewClient(uploadURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		uploadURL: uploadURL,
		apiKey:    apiKey,
		logger:    logger,
	}
}

// uploadResponse is the ImgBB response envelope.
type uploadResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Upload reads the whole file, base64-encodes it and posts it in a single
// multipart request. The display name is the file stem.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("imghost: read %s: %w", localPath, err)
	}
	if mt := detectMIME(data); !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("imghost: %s is %s: %w", localPath, mt, apperr.ErrNotImage)
	}

	name := resources.Stem(filepath.Base(localPath))
	c.logger.Debug("uploading image", slog.String("path", localPath), slog.Int("bytes", len(data)))

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"key":   c.apiKey,
			"image": base64.StdEncoding.EncodeToString(data),
			"name":  name,
		}).
		Post(c.uploadURL)
	if err != nil {
		return "", fmt.Errorf("imghost: post: %w", err)
	}

	var body uploadResponse
	decodeErr := json.Unmarshal(resp.Body(), &body)

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", &UploadError{Status: resp.StatusCode(), Message: body.Error.Message}
	}
	if decodeErr != nil {
		return "", &UploadError{Status: resp.StatusCode(), Message: "malformed response: " + decodeErr.Error()}
	}
	if !body.Success || body.Data.URL == "" {
		msg := body.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", &UploadError{Status: resp.StatusCode(), Message: msg}
	}

	c.logger.Info("image uploaded", slog.String("path", localPath), slog.String("url", body.Data.URL))
	return body.Data.URL, nil
}

// detectMIME tries the stdlib sniffer first and falls back to mimetype for
// anything it does not recognise as an image (svg, heic, avif).
func detectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	if mt := http.DetectContentType(head); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return mimetype.Detect(head).String()
}
