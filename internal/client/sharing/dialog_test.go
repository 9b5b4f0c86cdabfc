package sharing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

type fakeAPI struct {
	mu        sync.Mutex
	users     []models.User
	searchErr error
	searches  []string
	shares    []shareCall
}

type shareCall struct {
	docID int64
	email string
	level string
}

func (f *fakeAPI) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	return f.users, f.searchErr
}

func (f *fakeAPI) ShareDocument(ctx context.Context, id int64, email, level string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares = append(f.shares, shareCall{docID: id, email: email, level: level})
	return nil
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func testLog() logging.Logger {
	return logging.NewDefault(io.Discard, slog.LevelError)
}

func TestSetQuery_DebouncesBursts(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: 1, Name: "Jo"}}}
	d := NewDialog(api, testLog(), 1, 40*time.Millisecond)
	defer d.Close()

	d.SetQuery(context.Background(), "j")
	d.SetQuery(context.Background(), "jo")
	d.SetQuery(context.Background(), "jo@")

	require.Eventually(t, func() bool { return len(d.Results()) == 1 }, 2*time.Second, 2*time.Millisecond)
	require.Equal(t, 1, api.searchCount(), "only the final query of the burst may hit the network")

	api.mu.Lock()
	require.Equal(t, "jo@", api.searches[0])
	api.mu.Unlock()
}

func TestSetQuery_EmptyClearsWithoutSearch(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: 1}}}
	d := NewDialog(api, testLog(), 1, 10*time.Millisecond)
	defer d.Close()

	d.SetQuery(context.Background(), "jo")
	require.Eventually(t, func() bool { return len(d.Results()) == 1 }, 2*time.Second, 2*time.Millisecond)

	d.SetQuery(context.Background(), "")
	require.Empty(t, d.Results())
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, api.searchCount())
}

func TestSearchFailure_ReadsAsNoResults(t *testing.T) {
	api := &fakeAPI{searchErr: errors.New("boom")}
	d := NewDialog(api, testLog(), 1, 10*time.Millisecond)
	defer d.Close()

	d.SetQuery(context.Background(), "jo")
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, d.Results())
}

func TestShare_DefaultsToViewLevel(t *testing.T) {
	api := &fakeAPI{}
	d := NewDialog(api, testLog(), 42, 10*time.Millisecond)
	defer d.Close()

	require.NoError(t, d.Share(context.Background(), "jo@x.io", ""))
	require.NoError(t, d.Share(context.Background(), "ed@x.io", models.PermissionEdit))

	require.Equal(t, []shareCall{
		{docID: 42, email: "jo@x.io", level: models.PermissionView},
		{docID: 42, email: "ed@x.io", level: models.PermissionEdit},
	}, api.shares)
}

func TestClose_CancelsPendingSearch(t *testing.T) {
	api := &fakeAPI{users: []models.User{{ID: 1}}}
	d := NewDialog(api, testLog(), 1, 30*time.Millisecond)

	d.SetQuery(context.Background(), "jo")
	d.Close()
	time.Sleep(60 * time.Millisecond)
	require.Zero(t, api.searchCount())
}
