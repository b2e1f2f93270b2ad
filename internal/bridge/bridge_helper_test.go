package bridge

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
)

// fakeBridge is an in-process bridge server. Navigating to the feed lands on
// the login page unless the session holds li_at == acceptToken.
type fakeBridge struct {
	t *testing.T

	mu           sync.Mutex
	next         int
	sessions     map[string]*remoteBrowser
	acceptToken  string
	unhealthy    bool
	omitID       bool
	failClose    map[string]bool
	lastCreate   createSessionRequest
	lastDomain   string
	closed       []string
	scriptResult any
	pageSource   string

	server *httptest.Server
}

type remoteBrowser struct {
	url     string
	cookies []browser.Cookie
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()
	fb := &fakeBridge{
		t:         t,
		sessions:  make(map[string]*remoteBrowser),
		failClose: make(map[string]bool),
	}

	r := chi.NewRouter()
	r.Get("/health", fb.health)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", fb.list)
		r.Post("/", fb.create)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", fb.close)
			r.Post("/navigate", fb.navigate)
			r.Post("/execute", fb.execute)
			r.Get("/cookies", fb.getCookies)
			r.Post("/cookies", fb.setCookies)
			r.Get("/source", fb.source)
			r.Get("/url", fb.currentURL)
		})
	})

	fb.server = httptest.NewServer(r)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBridge) client() *Client {
	return NewClient(config.BridgeConfig{URL: fb.server.URL + "/", Timeout: 5 * time.Second}, zaptest.NewLogger(fb.t))
}

func (fb *fakeBridge) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (fb *fakeBridge) lookup(w http.ResponseWriter, r *http.Request) *remoteBrowser {
	rb, ok := fb.sessions[chi.URLParam(r, "id")]
	if !ok {
		fb.reply(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil
	}
	return rb
}

func (fb *fakeBridge) health(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.unhealthy {
		fb.reply(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (fb *fakeBridge) list(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	list := make([]map[string]any, 0, len(fb.sessions))
	for id := range fb.sessions {
		list = append(list, map[string]any{"sessionId": id})
	}
	fb.reply(w, http.StatusOK, map[string]any{"sessions": list})
}

func (fb *fakeBridge) create(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fb.reply(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fb.lastCreate = req
	if fb.omitID {
		fb.reply(w, http.StatusOK, map[string]any{})
		return
	}
	fb.next++
	id := fmt.Sprintf("s%d", fb.next)
	fb.sessions[id] = &remoteBrowser{url: "about:blank"}
	fb.reply(w, http.StatusOK, map[string]string{"sessionId": id})
}

func (fb *fakeBridge) close(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id := chi.URLParam(r, "id")
	if fb.failClose[id] {
		fb.reply(w, http.StatusInternalServerError, map[string]string{"error": "browser crashed"})
		return
	}
	delete(fb.sessions, id)
	fb.closed = append(fb.closed, id)
	fb.reply(w, http.StatusOK, map[string]bool{"success": true})
}

func (fb *fakeBridge) navigate(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rb := fb.lookup(w, r)
	if rb == nil {
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	assert.NoError(fb.t, json.NewDecoder(r.Body).Decode(&req))
	rb.url = req.URL
	if strings.HasPrefix(req.URL, browser.LinkedInFeedURL) && !fb.loggedIn(rb) {
		rb.url = "https://www.linkedin.com/login?fromSignIn=true"
	}
	fb.reply(w, http.StatusOK, map[string]bool{"success": true})
}

func (fb *fakeBridge) loggedIn(rb *remoteBrowser) bool {
	for _, c := range rb.cookies {
		if c.Name == browser.AuthCookieName && fb.acceptToken != "" && c.Value == fb.acceptToken {
			return true
		}
	}
	return false
}

func (fb *fakeBridge) execute(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.lookup(w, r) == nil {
		return
	}
	fb.reply(w, http.StatusOK, map[string]any{"result": fb.scriptResult})
}

func (fb *fakeBridge) getCookies(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rb := fb.lookup(w, r)
	if rb == nil {
		return
	}
	fb.lastDomain = r.URL.Query().Get("domain")
	fb.reply(w, http.StatusOK, map[string]any{"cookies": browser.FilterCookies(rb.cookies, fb.lastDomain)})
}

func (fb *fakeBridge) setCookies(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rb := fb.lookup(w, r)
	if rb == nil {
		return
	}
	var req struct {
		Cookies []browser.Cookie `json:"cookies"`
	}
	assert.NoError(fb.t, json.NewDecoder(r.Body).Decode(&req))
	rb.cookies = append(rb.cookies, req.Cookies...)
	fb.reply(w, http.StatusOK, map[string]bool{"success": true})
}

func (fb *fakeBridge) source(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.lookup(w, r) == nil {
		return
	}
	fb.reply(w, http.StatusOK, map[string]string{"source": fb.pageSource})
}

func (fb *fakeBridge) currentURL(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rb := fb.lookup(w, r)
	if rb == nil {
		return
	}
	fb.reply(w, http.StatusOK, map[string]string{"url": rb.url})
}

func (fb *fakeBridge) set(fn func(fb *fakeBridge)) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fn(fb)
}

func (fb *fakeBridge) closedIDs() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.closed...)
}
