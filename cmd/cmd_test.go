// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/mcp"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
	"github.com/xkilldash9x/linkedin-mcp/internal/service"
	"github.com/xkilldash9x/linkedin-mcp/internal/session"
)

// --- Test doubles ---

type stubSession struct{}

func (stubSession) Navigate(context.Context, string) error                       { return nil }
func (stubSession) ExecuteScript(context.Context, string) (any, error)           { return nil, nil }
func (stubSession) GetCookies(context.Context, string) ([]browser.Cookie, error) { return nil, nil }
func (stubSession) SetCookies(context.Context, []browser.Cookie) error           { return nil }
func (stubSession) GetPageSource(context.Context) (string, error)                { return "", nil }
func (stubSession) GetCurrentURL(context.Context) (string, error)                { return "", nil }
func (stubSession) Close(context.Context) error                                  { return nil }
func (stubSession) IsBridgeSession() bool                                        { return false }

type stubLauncher struct{ tokens []string }

func (l *stubLauncher) Launch(_ context.Context, token string) (browser.Session, error) {
	l.tokens = append(l.tokens, token)
	return stubSession{}, nil
}

type stubExtractor struct{ err error }

func (e stubExtractor) Person(_ context.Context, _ browser.Session, username string) (*scraper.Person, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &scraper.Person{Name: "Profile of " + username, ExtractionMethod: scraper.MethodWebDriver}, nil
}

func (e stubExtractor) Company(_ context.Context, _ browser.Session, name string) (*scraper.Company, error) {
	return &scraper.Company{Name: name}, e.err
}

func (e stubExtractor) Job(_ context.Context, _ browser.Session, jobID string) (*scraper.Job, error) {
	return &scraper.Job{Title: "Job " + jobID}, e.err
}

// stubFactory builds components around the stub launcher and extractor.
type stubFactory struct {
	launcher  *stubLauncher
	extractor stubExtractor
	err       error
}

func (f *stubFactory) Create(cfg config.Interface, _ *zap.Logger) (*service.Components, error) {
	if f.err != nil {
		return nil, f.err
	}
	manager := session.NewManager(cfg.Bridge(), f.launcher, nil)
	return &service.Components{
		Config:   cfg,
		Sessions: manager,
		Tools:    mcp.NewTools(manager, f.extractor, cfg.LinkedIn().Cookie, nil),
	}, nil
}

func useFactory(t *testing.T, f service.ComponentFactory) {
	t.Helper()
	original := newComponentFactory
	newComponentFactory = func() service.ComponentFactory { return f }
	t.Cleanup(func() { newComponentFactory = original })
}

// --- Helpers ---

// executeCommand runs a fresh root command from an empty directory so no
// stray config.yaml is picked up.
func executeCommand(t *testing.T, args ...string) (string, config.Interface, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LINKEDIN_COOKIE", "")

	root, cfgPtr := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), *cfgPtr, err
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// --- Tests ---

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "linkedin-mcp version "+Version+"\n", out)
}

func TestVersionFlag(t *testing.T) {
	out, _, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "linkedin-mcp version "+Version)
}

func TestConfigFileFlagsAndEnv(t *testing.T) {
	useFactory(t, &stubFactory{launcher: &stubLauncher{}})
	// Nothing listens at the bridge URL once the server is closed.
	down := httptest.NewServer(http.NotFoundHandler())
	bridgeURL := down.URL
	down.Close()

	configFile := createTempConfig(t, fmt.Sprintf(`
bridge:
  enabled: false
  url: %s
  fallback_to_direct: true
scraper:
  requests_per_minute: 10
`, bridgeURL))
	t.Setenv("LINKEDIN_MCP_SCRAPER_PAGE_LOAD_WAIT", "7s")

	_, cfg, err := executeCommand(t, "--config", configFile, "--bridge", "--no-fallback", "scrape", "job", "42")
	// The bridge is enabled without fallback, so the stub launcher is never reached.
	require.Error(t, err)
	assert.True(t, bridgeUnavailable(err), err.Error())

	require.NotNil(t, cfg)
	assert.True(t, cfg.Bridge().Enabled, "flag overrides file")
	assert.False(t, cfg.Bridge().FallbackToDirect, "flag overrides file")
	assert.Equal(t, bridgeURL, cfg.Bridge().URL)
	assert.Equal(t, 10, cfg.Scraper().RequestsPerMinute)
	assert.Equal(t, "7s", cfg.Scraper().PageLoadWait.String())
}

func bridgeUnavailable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "bridge unavailable, fallback disabled")
}

func TestInvalidFlagCombination(t *testing.T) {
	useFactory(t, &stubFactory{launcher: &stubLauncher{}})
	_, _, err := executeCommand(t, "--bridge", "--bridge-url", "ftp://bridge", "scrape", "person", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flag combination")
}

func TestScrapeRequiresIdentifier(t *testing.T) {
	useFactory(t, &stubFactory{launcher: &stubLauncher{}})
	_, _, err := executeCommand(t, "scrape", "person")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s), received 0")
}

func TestScrapePrintsJSON(t *testing.T) {
	launcher := &stubLauncher{}
	useFactory(t, &stubFactory{launcher: launcher})
	t.Setenv("LINKEDIN_COOKIE", "")

	out, _, err := executeCommand(t, "scrape", "person", "stickerdaniel")
	require.NoError(t, err)

	var person scraper.Person
	require.NoError(t, json.Unmarshal([]byte(out), &person), out)
	assert.Equal(t, "Profile of stickerdaniel", person.Name)
	assert.Equal(t, scraper.MethodWebDriver, person.ExtractionMethod)
	assert.Len(t, launcher.tokens, 1, "one direct session per invocation")
}

func TestScrapeSubcommands(t *testing.T) {
	useFactory(t, &stubFactory{launcher: &stubLauncher{}})

	out, _, err := executeCommand(t, "scrape", "company", "anthropic")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "anthropic"`)

	out, _, err = executeCommand(t, "scrape", "job", "42")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Job 42"`)
}

func TestScrapeExtractionError(t *testing.T) {
	useFactory(t, &stubFactory{launcher: &stubLauncher{}, extractor: stubExtractor{err: scraper.ErrEmptyIdentifier}})
	_, _, err := executeCommand(t, "scrape", "person", " ")
	require.Error(t, err)
	assert.ErrorIs(t, err, scraper.ErrEmptyIdentifier)
	assert.Contains(t, err.Error(), "extraction failed")
}

func TestFactoryError(t *testing.T) {
	useFactory(t, &stubFactory{err: errors.New("no chrome")})
	_, _, err := executeCommand(t, "scrape", "job", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize components")
}

func newBridgeServer(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/sessions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessions":[{"sessionId":"s1","profileName":"linkedin"}]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestBridgeHealth(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		srv := newBridgeServer(t, true)
		out, _, err := executeCommand(t, "--bridge-url", srv.URL, "bridge", "health")
		require.NoError(t, err)
		assert.Contains(t, out, "is available")
	})

	t.Run("unavailable", func(t *testing.T) {
		srv := newBridgeServer(t, false)
		_, _, err := executeCommand(t, "--bridge-url", srv.URL, "bridge", "health")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is unavailable")
	})
}

func TestBridgeSessions(t *testing.T) {
	srv := newBridgeServer(t, true)
	out, _, err := executeCommand(t, "--bridge-url", srv.URL, "bridge", "sessions")
	require.NoError(t, err)

	var sessions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &sessions), out)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0]["sessionId"])
}

func TestGetConfigFromContext_Missing(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	require.Error(t, err)
}
