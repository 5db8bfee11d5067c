package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/niveshpath/client/src/api"
	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/security"
	"github.com/niveshpath/client/src/session"
	"github.com/niveshpath/client/src/storage"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	sealer, err := security.NewSealer("test-secret")
	if err != nil {
		t.Fatalf("NewSealer returned error: %v", err)
	}
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "state.db"), sealer)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(http.NewServeMux())
	t.Cleanup(server.Close)
	client := api.NewClient(server.URL, 5*time.Second, session.TokenSource(store))

	out := &bytes.Buffer{}
	app := &App{
		Session: session.NewManager(client, store),
		Store:   store,
		In:      strings.NewReader(""),
		Out:     out,
	}
	return app, out
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	app, out := newTestApp(t)
	if code := app.Run(context.Background(), nil); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Errorf("usage not printed:\n%s", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	app, out := newTestApp(t)
	if code := app.Run(context.Background(), []string{"frobnicate"}); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(out.String(), `unknown command "frobnicate"`) {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestThemeCommand(t *testing.T) {
	app, out := newTestApp(t)

	if code := app.Run(context.Background(), []string{"theme"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Theme: light") {
		t.Errorf("output:\n%s", out.String())
	}

	out.Reset()
	if code := app.Run(context.Background(), []string{"theme", "dark"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if app.Store.Theme() != "dark" {
		t.Error("theme not persisted")
	}

	out.Reset()
	if code := app.Run(context.Background(), []string{"theme", "sepia"}); code != 1 {
		t.Errorf("exit code = %d, want 1 for unknown theme", code)
	}
}

func TestProtectedCommandRequiresLogin(t *testing.T) {
	app, out := newTestApp(t)

	if code := app.Run(context.Background(), []string{"sip"}); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out.String(), "not signed in") {
		t.Errorf("output:\n%s", out.String())
	}
}
