// Package editor implements the client-side document synchronization
// engine: per-field debounced change detection, dirtiness evaluation
// against the last persisted snapshot, create-vs-update save coordination
// with a stable identity transition, and the save-status state machine.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// Store is the slice of the remote API the session needs. api.HTTPClient
// satisfies it; tests substitute fakes.
type Store interface {
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	CreateDocument(ctx context.Context, p models.DocumentPayload) (*models.Document, error)
	UpdateDocument(ctx context.Context, id int64, p models.DocumentPayload) (*models.Document, error)
}

// Options tunes a Session. Zero debounce values fall back to the product
// defaults (1s title, 2s content); tests shrink them.
type Options struct {
	TitleDebounce   time.Duration
	ContentDebounce time.Duration

	// OnStatus is invoked on every status change. OnIdentity is invoked
	// once, when a draft receives its server id. Both callbacks run on
	// internal goroutines with the session locked and must not call back
	// into the Session.
	OnStatus   func(SaveStatus)
	OnIdentity func(Identity)

	Logger logging.Logger
}

// Session owns one document for the lifetime of an editing run.
//
// Contract:
//   - SetTitle/SetContent register raw edits and restart that field's
//     debounce timer; the other field's timer is untouched.
//   - SetPublic settles immediately (no debounce).
//   - Every raw edit flips the status to "unsaved changes" unless a save
//     is in flight, in which case the completion handler re-derives it.
//   - A save is issued when any settled field differs from the snapshot,
//     except for a never-persisted document whose settled title and
//     content are both empty.
//   - The payload sent is the raw triple at dispatch time; the snapshot
//     written on success is exactly that payload.
//   - Saves carry a monotonically increasing sequence; a completion only
//     writes the snapshot if its sequence is above the applied watermark,
//     so an old save resolving late cannot clobber a newer one.
//   - While a create is in flight further save-due signals are deferred
//     and re-evaluated on completion, so a draft is never created twice.
type Session struct {
	store Store
	log   logging.Logger

	onStatus   func(SaveStatus)
	onIdentity func(Identity)

	titleDelay   time.Duration
	contentDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	identity Identity
	status   SaveStatus

	// raw field values, as typed
	title    string
	content  string
	isPublic bool

	// settled values, updated when a debounce window elapses
	settledTitle   string
	settledContent string

	snapshot Snapshot

	titleTimer   *time.Timer
	contentTimer *time.Timer

	seq         uint64 // last issued save attempt
	appliedSeq  uint64 // highest attempt that wrote the snapshot
	inFlight    int
	pendingEval bool
	closed      bool
}

// Open loads the document named by id (or starts a blank draft for a new
// identity) and returns a running session. A load failure is fatal: no
// session is returned and the caller is expected to navigate away.
func Open(ctx context.Context, store Store, id Identity, opts Options) (*Session, error) {
	if opts.TitleDebounce <= 0 {
		opts.TitleDebounce = 1000 * time.Millisecond
	}
	if opts.ContentDebounce <= 0 {
		opts.ContentDebounce = 2000 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDefault(io.Discard, slog.LevelError)
	}

	s := &Session{
		store:        store,
		log:          opts.Logger,
		onStatus:     opts.OnStatus,
		onIdentity:   opts.OnIdentity,
		titleDelay:   opts.TitleDebounce,
		contentDelay: opts.ContentDebounce,
		identity:     id,
		status:       StatusUnsaved,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if !id.IsNew() {
		doc, err := store.GetDocument(ctx, id.ID())
		if err != nil {
			s.cancel()
			return nil, fmt.Errorf("loading document %d: %w", id.ID(), err)
		}
		s.title, s.content, s.isPublic = doc.Title, doc.Content, doc.IsPublic
		s.settledTitle, s.settledContent = doc.Title, doc.Content
		s.snapshot = Snapshot{Title: doc.Title, Content: doc.Content, IsPublic: doc.IsPublic}
		s.status = StatusSaved
	}

	return s, nil
}

// SetTitle registers a raw title edit.
func (s *Session) SetTitle(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.title = v
	s.markEditedLocked()
	s.restartLocked(&s.titleTimer, s.titleDelay, s.settleTitle)
}

// SetContent registers a raw content edit. Content is whatever markup the
// editing surface emits; the session treats it as an opaque string.
func (s *Session) SetContent(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.content = v
	s.markEditedLocked()
	s.restartLocked(&s.contentTimer, s.contentDelay, s.settleContent)
}

// SetPublic toggles visibility. The flag settles immediately: the dirty
// evaluation runs right away instead of waiting out a debounce window.
func (s *Session) SetPublic(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.isPublic == v {
		return
	}
	s.isPublic = v
	s.markEditedLocked()
	s.evaluateLocked()
}

// Status returns the current save status.
func (s *Session) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Identity returns the document's current identity.
func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Snapshot returns the last persisted triple.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Title returns the raw title as typed.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Content returns the raw content as typed.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// IsPublic returns the visibility flag.
func (s *Session) IsPublic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPublic
}

// Close ends the session: debounce timers are stopped, the session context
// is cancelled so in-flight requests unwind, and Close blocks until every
// save goroutine has drained. Edits that never settled are discarded, as
// they are when the user navigates away mid-typing.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.titleTimer != nil {
		s.titleTimer.Stop()
	}
	if s.contentTimer != nil {
		s.contentTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return nil
}

// markEditedLocked applies the raw-edit status rule: any edit shows
// "unsaved changes" immediately, except while a request is in flight —
// then the completion handler re-derives the status from the outcome.
func (s *Session) markEditedLocked() {
	if s.status == StatusSaving {
		return
	}
	s.setStatusLocked(StatusUnsavedChanges)
}

func (s *Session) setStatusLocked(v SaveStatus) {
	if s.status == v {
		return
	}
	s.status = v
	if s.onStatus != nil {
		s.onStatus(v)
	}
}

// restartLocked arms (or re-arms) one field's debounce timer without
// touching the other field's timer.
func (s *Session) restartLocked(timer **time.Timer, d time.Duration, fire func()) {
	if *timer != nil {
		(*timer).Stop()
	}
	*timer = time.AfterFunc(d, fire)
}

func (s *Session) settleTitle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.settledTitle = s.title
	s.evaluateLocked()
}

func (s *Session) settleContent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.settledContent = s.content
	s.evaluateLocked()
}

// evaluateLocked is the dirty evaluator: it compares the settled triple
// against the snapshot and hands over to the save coordinator when they
// differ. It re-runs on every settle event and visibility toggle.
func (s *Session) evaluateLocked() {
	dirty := s.settledTitle != s.snapshot.Title ||
		s.settledContent != s.snapshot.Content ||
		s.isPublic != s.snapshot.IsPublic
	if !dirty {
		return
	}

	// Never create a document out of a completely empty draft, no matter
	// how often the visibility flag is toggled.
	if s.identity.IsNew() && s.settledTitle == "" && s.settledContent == "" {
		return
	}

	// The first create must finish before anything else is sent; the
	// draft has no address to update yet. Remember that a save became due
	// and re-evaluate when the create resolves.
	if s.identity.IsNew() && s.inFlight > 0 {
		s.pendingEval = true
		return
	}

	s.saveLocked()
}

// saveLocked is the save coordinator: it picks create or update from the
// identity, captures the raw triple as the payload, and dispatches the
// request on its own goroutine.
func (s *Session) saveLocked() {
	s.seq++
	attempt := s.seq
	payload := models.DocumentPayload{Title: s.title, Content: s.content, IsPublic: s.isPublic}
	id := s.identity

	s.setStatusLocked(StatusSaving)
	s.inFlight++
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		var (
			doc *models.Document
			err error
		)
		if id.IsNew() {
			doc, err = s.store.CreateDocument(s.ctx, payload)
		} else {
			doc, err = s.store.UpdateDocument(s.ctx, id.ID(), payload)
		}
		s.finish(attempt, payload, doc, err)
	}()
}

// finish applies a completed save attempt. Ordering rule: only attempts
// above the applied watermark may write the snapshot, and only the latest
// issued attempt drives the visible status — anything older resolves
// silently.
func (s *Session) finish(attempt uint64, sent models.DocumentPayload, doc *models.Document, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	if s.closed {
		return
	}

	latest := attempt == s.seq

	switch {
	case err != nil:
		// Snapshot and identity stay untouched; the next qualifying edit
		// re-triggers the evaluator.
		if latest {
			s.log.Warn(s.ctx, "save failed", "attempt", attempt, "err", err)
			s.setStatusLocked(StatusErrorSaving)
		} else {
			s.log.Debug(s.ctx, "stale save failed, discarded", "attempt", attempt)
		}

	default:
		if attempt > s.appliedSeq {
			s.appliedSeq = attempt
			s.snapshot = Snapshot{Title: sent.Title, Content: sent.Content, IsPublic: sent.IsPublic}
			if s.identity.IsNew() {
				s.identity = PersistedDocument(doc.ID)
				s.log.Info(s.ctx, "document created", "id", doc.ID)
				if s.onIdentity != nil {
					s.onIdentity(s.identity)
				}
			}
		} else {
			s.log.Debug(s.ctx, "stale save succeeded, discarded", "attempt", attempt)
		}
		if latest {
			if s.title == s.snapshot.Title && s.content == s.snapshot.Content && s.isPublic == s.snapshot.IsPublic {
				s.setStatusLocked(StatusSaved)
			} else {
				// Fields moved on while the request was in flight.
				s.setStatusLocked(StatusUnsavedChanges)
			}
		}
	}

	if s.pendingEval && s.inFlight == 0 {
		s.pendingEval = false
		s.evaluateLocked()
	}
}
