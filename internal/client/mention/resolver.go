// Package mention implements the @-mention resolver: per-keystroke user
// search behind the trigger character, a keyboard-navigable candidate list,
// and conversion of the chosen candidate into a structured reference token.
package mention

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// Trigger is the character that opens a mention inside the editing surface.
const Trigger = '@'

// Token is the structured reference a committed mention embeds into the
// content, replacing the raw trigger-and-query text.
type Token struct {
	ID    int64
	Label string
}

// HTML serializes the token in the markup form the server's mention scanner
// recognizes (it keys off the data-id attribute).
func (t Token) HTML() string {
	return fmt.Sprintf(`<span data-type="mention" data-id="%d">@%s</span>`, t.ID, html.EscapeString(t.Label))
}

// Searcher is the slice of the remote API the resolver needs.
type Searcher interface {
	SearchUsers(ctx context.Context, q string) ([]models.User, error)
}

// Key is a navigation keystroke forwarded from the editing surface while
// the candidate list is open.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Resolver runs one mention interaction at a time. Each keystroke behind
// the trigger supersedes the previous query: responses carry the sequence
// number of the query that issued them, and anything but the latest is
// discarded. A search failure reads as "no results".
type Resolver struct {
	searcher Searcher
	log      logging.Logger

	mu     sync.Mutex
	active bool
	seq    uint64
	items  []models.User
	index  int

	// onItems, when set, is notified after the candidate list changes.
	onItems func([]models.User)
}

func NewResolver(searcher Searcher, log logging.Logger) *Resolver {
	return &Resolver{searcher: searcher, log: log}
}

// OnItems registers a callback invoked (on the query goroutine) whenever
// the candidate list is replaced.
func (r *Resolver) OnItems(fn func([]models.User)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onItems = fn
}

// Start opens a mention interaction: the trigger character was typed.
func (r *Resolver) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.seq++
	r.items = nil
	r.index = 0
}

// Active reports whether a mention interaction is open.
func (r *Resolver) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Query updates the text typed after the trigger. The empty query clears
// the list without a network call; anything else issues a search whose
// response is applied only if no newer query has been typed since.
func (r *Resolver) Query(ctx context.Context, q string) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.seq++
	seq := r.seq
	if q == "" {
		r.setItemsLocked(nil)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	go func() {
		users, err := r.searcher.SearchUsers(ctx, q)
		if err != nil {
			r.log.Debug(ctx, "mention search failed", "q", q, "err", err)
			users = nil
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.active || seq != r.seq {
			return // a newer keystroke superseded this query
		}
		r.setItemsLocked(users)
	}()
}

func (r *Resolver) setItemsLocked(users []models.User) {
	r.items = users
	r.index = 0
	if r.onItems != nil {
		r.onItems(users)
	}
}

// Candidates returns the current list.
func (r *Resolver) Candidates() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items
}

// Index returns the highlighted position.
func (r *Resolver) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// HandleKey processes a navigation keystroke. Up and Down cycle the
// highlight with wrap-around, Enter commits the highlighted candidate,
// Escape dismisses without committing. The returned token is valid only
// when committed is true.
func (r *Resolver) HandleKey(k Key) (tok Token, committed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return Token{}, false
	}

	switch k {
	case KeyUp:
		if n := len(r.items); n > 0 {
			r.index = (r.index + n - 1) % n
		}
	case KeyDown:
		if n := len(r.items); n > 0 {
			r.index = (r.index + 1) % n
		}
	case KeyEnter:
		if r.index < len(r.items) {
			u := r.items[r.index]
			r.dismissLocked()
			return Token{ID: u.ID, Label: u.Name}, true
		}
	case KeyEscape:
		r.dismissLocked()
	}
	return Token{}, false
}

// Dismiss closes the interaction without committing.
func (r *Resolver) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissLocked()
}

func (r *Resolver) dismissLocked() {
	r.active = false
	r.seq++ // invalidate in-flight queries
	r.items = nil
	r.index = 0
}
