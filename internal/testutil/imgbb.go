package testutil

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeImgBB is an in-process stand-in for the ImgBB upload API.
type FakeImgBB struct {
	Server *httptest.Server
	Key    string

	mu      sync.Mutex
	uploads []Upload
	fail    map[string]string
}

// Upload records one accepted or rejected upload.
type Upload struct {
	Name string
	Data []byte
}

// NewFakeImgBB starts a fake accepting the given API key.
func NewFakeImgBB(t *testing.T, key string) *FakeImgBB {
	t.Helper()
	f := &FakeImgBB{Key: key, fail: map[string]string{}}

	r := chi.NewRouter()
	r.Post("/1/upload", f.upload)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the upload endpoint.
func (f *FakeImgBB) URL() string { return f.Server.URL + "/1/upload" }

// Fail makes uploads with the given display name fail with msg.
func (f *FakeImgBB) Fail(name, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = msg
}

// Uploads returns a copy of the recorded uploads.
func (f *FakeImgBB) Uploads() []Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Upload(nil), f.uploads...)
}

// HostedURL is the URL the fake hands out for a display name.
func (f *FakeImgBB) HostedURL(name string) string {
	return f.Server.URL + "/i/" + name
}

func (f *FakeImgBB) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, imgbbError(http.StatusBadRequest, "expected multipart form"))
		return
	}
	if r.FormValue("key") != f.Key {
		writeJSON(w, http.StatusBadRequest, imgbbError(http.StatusBadRequest, "Invalid API v1 key."))
		return
	}
	name := r.FormValue("name")
	data, err := base64.StdEncoding.DecodeString(r.FormValue("image"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, imgbbError(http.StatusBadRequest, "Invalid base64 string."))
		return
	}

	f.mu.Lock()
	f.uploads = append(f.uploads, Upload{Name: name, Data: data})
	msg, failing := f.fail[name]
	f.mu.Unlock()

	if failing {
		writeJSON(w, http.StatusBadRequest, imgbbError(http.StatusBadRequest, msg))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  http.StatusOK,
		"data":    map[string]any{"url": f.HostedURL(name), "display_url": f.HostedURL(name)},
	})
}

func imgbbError(status int, msg string) map[string]any {
	return map[string]any{
		"success":     false,
		"status_code": status,
		"error":       map[string]any{"message": msg, "code": status},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
