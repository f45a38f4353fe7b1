package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notion-import/internal/models"
)

// FakeNotion is an in-process stand-in for the subset of the Notion API the
// importer uses: create page, append block children and list users.
type FakeNotion struct {
	Server *httptest.Server
	Token  string

	// MaxChildren mirrors the API limit on children per append call.
	MaxChildren int

	mu         sync.Mutex
	seq        int
	pages      map[string]*FakePage
	order      []string
	calls      []string
	failCreate map[string]bool
	failAppend map[string]bool
}

// FakePage is a page created through the fake.
type FakePage struct {
	ID       string
	ParentID string
	Title    string
	Blocks   []models.Block
}

type richText struct {
	Type string `json:"type"`
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type pageRequest struct {
	Parent struct {
		PageID string `json:"page_id"`
	} `json:"parent"`
	Properties struct {
		Title struct {
			Title []richText `json:"title"`
		} `json:"title"`
	} `json:"properties"`
}

type wireBlock struct {
	Object    string `json:"object"`
	Type      string `json:"type"`
	Paragraph *struct {
		RichText []richText `json:"rich_text"`
	} `json:"paragraph"`
	Image *struct {
		Type     string `json:"type"`
		External struct {
			URL string `json:"url"`
		} `json:"external"`
		Caption []richText `json:"caption"`
	} `json:"image"`
}

type appendRequest struct {
	Children []wireBlock `json:"children"`
}

// NewFakeNotion starts a fake that accepts the given integration token.
func NewFakeNotion(t *testing.T, token string) *FakeNotion {
	t.Helper()
	f := &FakeNotion{
		Token:       token,
		MaxChildren: 100,
		pages:       map[string]*FakePage{},
		failCreate:  map[string]bool{},
		failAppend:  map[string]bool{},
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Use(f.auth)
		r.Get("/users", f.listUsers)
		r.Post("/pages", f.createPage)
		r.Patch("/blocks/{id}/children", f.appendChildren)
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL returns the API base URL including the version prefix.
func (f *FakeNotion) BaseURL() string { return f.Server.URL + "/v1" }

// FailCreate makes page creation with the given title fail.
func (f *FakeNotion) FailCreate(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate[title] = true
}

// FailAppend makes block attachment to the page with the given title fail.
func (f *FakeNotion) FailAppend(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAppend[title] = true
}

// Pages returns the created pages in creation order.
func (f *FakeNotion) Pages() []FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakePage, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.pages[id])
	}
	return out
}

// PageByTitle returns the first page with the given title.
func (f *FakeNotion) PageByTitle(title string) (FakePage, bool) {
	for _, p := range f.Pages() {
		if p.Title == title {
			return p, true
		}
	}
	return FakePage{}, false
}

// Children returns pages whose parent is parentID, in creation order.
func (f *FakeNotion) Children(parentID string) []FakePage {
	var out []FakePage
	for _, p := range f.Pages() {
		if p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out
}

// Calls returns the request log, e.g. "create:Title" or "append:Title:3".
func (f *FakeNotion) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeNotion) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.Token {
			notionError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid.")
			return
		}
		if r.Header.Get("Notion-Version") == "" {
			notionError(w, http.StatusBadRequest, "missing_version", "Notion-Version header failed validation.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeNotion) listUsers(w http.ResponseWriter, _ *http.Request) {
	f.record("users")
	writeJSON(w, http.StatusOK, map[string]any{
		"object":  "list",
		"results": []map[string]any{{"object": "user", "id": "user-1", "type": "bot"}},
	})
}

func (f *FakeNotion) createPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notionError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	var title strings.Builder
	for _, rt := range req.Properties.Title.Title {
		title.WriteString(rt.Text.Content)
	}
	f.record("create:" + title.String())

	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Parent.PageID == "" {
		notionError(w, http.StatusBadRequest, "validation_error", "body.parent.page_id should be defined")
		return
	}
	if f.failCreate[title.String()] {
		notionError(w, http.StatusBadRequest, "validation_error", "page creation rejected")
		return
	}
	f.seq++
	id := fmt.Sprintf("page-%d", f.seq)
	f.pages[id] = &FakePage{ID: id, ParentID: req.Parent.PageID, Title: title.String()}
	f.order = append(f.order, id)
	writeJSON(w, http.StatusOK, map[string]any{"object": "page", "id": id})
}

func (f *FakeNotion) appendChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		notionError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	page, ok := f.pages[id]
	if !ok {
		notionError(w, http.StatusNotFound, "object_not_found", "Could not find block with ID: "+id)
		return
	}
	f.calls = append(f.calls, fmt.Sprintf("append:%s:%d", page.Title, len(req.Children)))
	if f.failAppend[page.Title] {
		notionError(w, http.StatusBadRequest, "validation_error", "append rejected")
		return
	}
	if f.MaxChildren > 0 && len(req.Children) > f.MaxChildren {
		notionError(w, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("body.children.length should be ≤ `%d`, instead was `%d`.", f.MaxChildren, len(req.Children)))
		return
	}
	for _, b := range req.Children {
		mb, err := b.model()
		if err != nil {
			notionError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		page.Blocks = append(page.Blocks, mb)
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "results": []any{}})
}

func (f *FakeNotion) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (b wireBlock) model() (models.Block, error) {
	switch b.Type {
	case "paragraph":
		if b.Paragraph == nil {
			return models.Block{}, fmt.Errorf("paragraph block without body")
		}
		var text strings.Builder
		for _, rt := range b.Paragraph.RichText {
			if len([]rune(rt.Text.Content)) > 2000 {
				return models.Block{}, fmt.Errorf("rich_text content length should be ≤ 2000")
			}
			text.WriteString(rt.Text.Content)
		}
		return models.Paragraph(text.String()), nil
	case "image":
		if b.Image == nil || b.Image.Type != "external" {
			return models.Block{}, fmt.Errorf("image block must be external")
		}
		var caption strings.Builder
		for _, rt := range b.Image.Caption {
			caption.WriteString(rt.Text.Content)
		}
		return models.Image(b.Image.External.URL, caption.String()), nil
	default:
		return models.Block{}, fmt.Errorf("unsupported block type %q", b.Type)
	}
}

func notionError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": msg,
	})
}
