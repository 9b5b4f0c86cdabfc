// Package sharing implements the share-document flow: a debounced user
// search and the permission grant itself.
package sharing

import (
	"context"
	"sync"
	"time"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// API is the slice of the remote API the dialog needs.
type API interface {
	SearchUsers(ctx context.Context, q string) ([]models.User, error)
	ShareDocument(ctx context.Context, id int64, email, level string) error
}

// Dialog drives sharing for one persisted document. Search input is
// debounced (300 ms by default, matching the web client) and responses are
// sequenced so a stale search cannot replace newer results. Search
// failures read as "no results".
type Dialog struct {
	api      API
	log      logging.Logger
	docID    int64
	debounce time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	results   []models.User
	onResults func([]models.User)
	closed    bool
}

func NewDialog(api API, log logging.Logger, docID int64, debounce time.Duration) *Dialog {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Dialog{api: api, log: log, docID: docID, debounce: debounce}
}

// OnResults registers a callback invoked (on a search goroutine) when the
// result list is replaced.
func (d *Dialog) OnResults(fn func([]models.User)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onResults = fn
}

// SetQuery registers new search input. The empty query clears the results
// immediately; anything else searches after the debounce window.
func (d *Dialog) SetQuery(ctx context.Context, q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	if q == "" {
		d.setResultsLocked(nil)
		return
	}
	d.timer = time.AfterFunc(d.debounce, func() {
		d.search(ctx, seq, q)
	})
}

func (d *Dialog) search(ctx context.Context, seq uint64, q string) {
	users, err := d.api.SearchUsers(ctx, q)
	if err != nil {
		d.log.Debug(ctx, "user search failed", "q", q, "err", err)
		users = nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || seq != d.seq {
		return
	}
	d.setResultsLocked(users)
}

func (d *Dialog) setResultsLocked(users []models.User) {
	d.results = users
	if d.onResults != nil {
		d.onResults(users)
	}
}

// Results returns the current search results.
func (d *Dialog) Results() []models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results
}

// Share grants access to the account behind email. The level defaults to
// view-only when empty.
func (d *Dialog) Share(ctx context.Context, email, level string) error {
	if level == "" {
		level = models.PermissionView
	}
	return d.api.ShareDocument(ctx, d.docID, email, level)
}

// Close cancels any pending debounce timer.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
