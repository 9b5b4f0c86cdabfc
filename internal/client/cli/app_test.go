package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smolyakovd/inkpad/internal/client/api"
	"github.com/smolyakovd/inkpad/internal/client/auth"
	"github.com/smolyakovd/inkpad/internal/client/config"
	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// fakeClient substitutes the remote API. Only the function fields a test
// sets are callable; everything else panics via the embedded interface.
type fakeClient struct {
	api.Client

	loginFn     func(ctx context.Context, email, password string) (string, error)
	registerFn  func(ctx context.Context, name, email, password string) error
	healthFn    func(ctx context.Context) (*models.Health, error)
	listFn      func(ctx context.Context) ([]models.Document, error)
	getFn       func(ctx context.Context, id int64) (*models.Document, error)
	createFn    func(ctx context.Context, p models.DocumentPayload) (*models.Document, error)
	updateFn    func(ctx context.Context, id int64, p models.DocumentPayload) (*models.Document, error)
	versionsFn  func(ctx context.Context, id int64) ([]models.Version, error)
	usersFn     func(ctx context.Context, q string) ([]models.User, error)
	shareFn     func(ctx context.Context, id int64, email, level string) error
	searchDocFn func(ctx context.Context, q string) ([]models.Document, error)
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginFn(ctx, email, password)
}
func (f *fakeClient) Register(ctx context.Context, name, email, password string) error {
	return f.registerFn(ctx, name, email, password)
}
func (f *fakeClient) Health(ctx context.Context) (*models.Health, error) {
	return f.healthFn(ctx)
}
func (f *fakeClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return f.listFn(ctx)
}
func (f *fakeClient) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	return f.getFn(ctx, id)
}
func (f *fakeClient) CreateDocument(ctx context.Context, p models.DocumentPayload) (*models.Document, error) {
	return f.createFn(ctx, p)
}
func (f *fakeClient) UpdateDocument(ctx context.Context, id int64, p models.DocumentPayload) (*models.Document, error) {
	return f.updateFn(ctx, id, p)
}
func (f *fakeClient) ListVersions(ctx context.Context, id int64) ([]models.Version, error) {
	return f.versionsFn(ctx, id)
}
func (f *fakeClient) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	return f.usersFn(ctx, q)
}
func (f *fakeClient) ShareDocument(ctx context.Context, id int64, email, level string) error {
	return f.shareFn(ctx, id, email, level)
}
func (f *fakeClient) SearchDocuments(ctx context.Context, q string) ([]models.Document, error) {
	return f.searchDocFn(ctx, q)
}

// newTestApp wires an App around a fake client, scripted input and a
// capture buffer for output.
func newTestApp(t *testing.T, client api.Client, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TokenFile = filepath.Join(t.TempDir(), "token")
	cfg.TitleDebounce = time.Hour // autosave stays out of the way unless a test shrinks this
	cfg.ContentDebounce = time.Hour
	cfg.UserSearchDebounce = time.Millisecond

	var out bytes.Buffer
	return &App{
		config: cfg,
		log:    logging.NewDefault(io.Discard, slog.LevelError),
		api:    client,
		tokens: auth.NewFileTokenStore(cfg.TokenFile),
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, &out
}

func stubPrompts(t *testing.T, lines []string, password string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		line := lines[i]
		i++
		return line, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })
}

func TestLogin_SavesTokenAndSwitchesPrompt(t *testing.T) {
	client := &fakeClient{
		loginFn: func(_ context.Context, email, password string) (string, error) {
			require.Equal(t, "alice@example.com", email)
			require.Equal(t, "pw123", password)
			return "tok-abc", nil
		},
	}
	app, out := newTestApp(t, client, "")
	stubPrompts(t, []string{"alice@example.com"}, "pw123")

	require.NoError(t, app.Login(context.Background()))
	require.True(t, app.isLoggedIn())
	require.Contains(t, app.getStatus(), "alice@example.com")
	require.Contains(t, out.String(), "Logged in.")

	saved, err := app.tokens.Load()
	require.NoError(t, err)
	require.Equal(t, "tok-abc", saved)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	client := &fakeClient{
		loginFn: func(_ context.Context, _, _ string) (string, error) {
			return "", api.ErrUnauthorized
		},
	}
	app, out := newTestApp(t, client, "")
	stubPrompts(t, []string{"alice@example.com"}, "wrong")

	require.Error(t, app.Login(context.Background()))
	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Invalid email or password.")
}

func TestRegister_ReportsSuccess(t *testing.T) {
	var gotName string
	client := &fakeClient{
		registerFn: func(_ context.Context, name, email, password string) error {
			gotName = name
			return nil
		},
	}
	app, out := newTestApp(t, client, "")
	stubPrompts(t, []string{"Alice", "alice@example.com"}, "pw123")

	require.NoError(t, app.Register(context.Background()))
	require.Equal(t, "Alice", gotName)
	require.Contains(t, out.String(), "Account created")
}

func TestLogout_ClearsToken(t *testing.T) {
	app, out := newTestApp(t, &fakeClient{}, "")
	require.NoError(t, app.tokens.Save("tok"))
	app.loggedIn = true
	app.user = "alice@example.com"

	require.NoError(t, app.Logout(context.Background()))
	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Logged out.")

	_, err := app.tokens.Load()
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestHandleErr_UnauthorizedDropsSession(t *testing.T) {
	app, out := newTestApp(t, &fakeClient{}, "")
	require.NoError(t, app.tokens.Save("tok"))
	app.loggedIn = true
	app.user = "alice@example.com"

	app.handleErr(api.ErrUnauthorized)

	require.False(t, app.isLoggedIn())
	require.Contains(t, out.String(), "Session expired")
	_, err := app.tokens.Load()
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestList_PrintsDocuments(t *testing.T) {
	client := &fakeClient{
		listFn: func(_ context.Context) ([]models.Document, error) {
			return []models.Document{
				{ID: 7, Title: "Roadmap", IsPublic: true, Author: models.User{Name: "Alice"}},
				{ID: 9, Author: models.User{Name: "Bob"}},
			}, nil
		},
	}
	app, out := newTestApp(t, client, "")

	require.NoError(t, app.List(context.Background()))
	require.Contains(t, out.String(), "Roadmap")
	require.Contains(t, out.String(), "public")
	require.Contains(t, out.String(), "(untitled)")
}

func TestSearch_EmptyResult(t *testing.T) {
	client := &fakeClient{
		searchDocFn: func(_ context.Context, q string) ([]models.Document, error) {
			require.Equal(t, "nothing here", q)
			return nil, nil
		},
	}
	app, out := newTestApp(t, client, "")

	require.NoError(t, app.Search(context.Background(), "nothing here"))
	require.Contains(t, out.String(), "No documents.")
}

func TestHealthCheck_PrintsStatus(t *testing.T) {
	client := &fakeClient{
		healthFn: func(_ context.Context) (*models.Health, error) {
			return &models.Health{Status: "ok", Message: "healthy"}, nil
		},
	}
	app, out := newTestApp(t, client, "")

	require.NoError(t, app.HealthCheck(context.Background()))
	require.Contains(t, out.String(), "Server is ok")
}

func TestOpen_BadArgument(t *testing.T) {
	app, out := newTestApp(t, &fakeClient{}, "")
	require.Error(t, app.Open(context.Background(), "abc"))
	require.Contains(t, out.String(), "Usage: open <id>")
}
