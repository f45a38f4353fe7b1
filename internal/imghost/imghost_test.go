package imghost

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notion-import/internal/apperr"
	"github.com/starford/notion-import/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	testutil.WriteFile(t, p, data)
	return p
}

func TestUpload_Success(t *testing.T) {
	fake := testutil.NewFakeImgBB(t, "k1")
	c := NewClient(fake.URL(), "k1", 5*time.Second, quietLogger())
	p := writeImage(t, "diagram.png", testutil.PNG)

	url, err := c.Upload(context.Background(), p)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != fake.HostedURL("diagram") {
		t.Errorf("url = %q, want %q", url, fake.HostedURL("diagram"))
	}

	ups := fake.Uploads()
	if len(ups) != 1 {
		t.Fatalf("uploads = %d, want 1", len(ups))
	}
	if ups[0].Name != "diagram" {
		t.Errorf("display name = %q, want stem", ups[0].Name)
	}
	if !bytes.Equal(ups[0].Data, testutil.PNG) {
		t.Error("uploaded payload does not round-trip through base64")
	}
}

func TestUpload_HostError(t *testing.T) {
	fake := testutil.NewFakeImgBB(t, "k1")
	fake.Fail("broken", "Invalid image source")
	c := NewClient(fake.URL(), "k1", 5*time.Second, quietLogger())

	_, err := c.Upload(context.Background(), writeImage(t, "broken.png", testutil.PNG))
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UploadError", err)
	}
	if ue.Message != "Invalid image source" {
		t.Errorf("message = %q", ue.Message)
	}
	if ue.Status != 400 {
		t.Errorf("status = %d", ue.Status)
	}
}

func TestUpload_BadKey(t *testing.T) {
	fake := testutil.NewFakeImgBB(t, "right")
	c := NewClient(fake.URL(), "wrong", 5*time.Second, quietLogger())

	_, err := c.Upload(context.Background(), writeImage(t, "a.png", testutil.PNG))
	var ue *UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UploadError", err)
	}
}

func TestUpload_NotAnImage(t *testing.T) {
	fake := testutil.NewFakeImgBB(t, "k1")
	c := NewClient(fake.URL(), "k1", 5*time.Second, quietLogger())

	_, err := c.Upload(context.Background(), writeImage(t, "notes.png", []byte("just some text")))
	if !errors.Is(err, apperr.ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}
	if n := len(fake.Uploads()); n != 0 {
		t.Errorf("uploads = %d, want none", n)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/upload", "k", time.Second, quietLogger())
	if _, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDetectMIME(t *testing.T) {
	if got := detectMIME(testutil.PNG); got != "image/png" {
		t.Errorf("png = %q", got)
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`)
	if got := detectMIME(svg); got != "image/svg+xml" {
		t.Errorf("svg = %q", got)
	}
	if got := detectMIME(nil); got != "application/octet-stream" {
		t.Errorf("empty = %q", got)
	}
}
