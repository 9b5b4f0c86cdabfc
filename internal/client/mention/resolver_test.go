package mention

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

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]models.User
	err     error
	calls   []string
	gates   map[string]chan struct{}
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string][]models.User{}, gates: map[string]chan struct{}{}}
}

func (f *fakeSearcher) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLog() logging.Logger {
	return logging.NewDefault(io.Discard, slog.LevelError)
}

func joUsers() []models.User {
	return []models.User{
		{ID: 1, Name: "Joan", Email: "joan@x.io"},
		{ID: 2, Name: "Jose", Email: "jose@x.io"},
		{ID: 3, Name: "Jo", Email: "jo@x.io"},
	}
}

func waitForCandidates(t *testing.T, r *Resolver, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.Candidates()) == n }, 2*time.Second, 2*time.Millisecond)
}

func TestEmptyQuery_NoNetworkCall(t *testing.T) {
	s := newFakeSearcher()
	r := NewResolver(s, testLog())
	r.Start()

	r.Query(context.Background(), "")
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, s.callCount())
	require.Empty(t, r.Candidates())
}

func TestQuery_PopulatesCandidates(t *testing.T) {
	s := newFakeSearcher()
	s.results["jo"] = joUsers()
	r := NewResolver(s, testLog())
	r.Start()

	r.Query(context.Background(), "jo")
	waitForCandidates(t, r, 3)
	require.Equal(t, 0, r.Index(), "highlight resets to the first candidate")
}

func TestDownThenEnter_CommitsSecondCandidate(t *testing.T) {
	s := newFakeSearcher()
	s.results["jo"] = joUsers()
	r := NewResolver(s, testLog())
	r.Start()
	r.Query(context.Background(), "jo")
	waitForCandidates(t, r, 3)

	_, committed := r.HandleKey(KeyDown)
	require.False(t, committed)
	tok, committed := r.HandleKey(KeyEnter)
	require.True(t, committed)
	require.Equal(t, Token{ID: 2, Label: "Jose"}, tok)
	require.False(t, r.Active(), "commit closes the interaction")
}

func TestNavigation_WrapsAround(t *testing.T) {
	s := newFakeSearcher()
	s.results["jo"] = joUsers()
	r := NewResolver(s, testLog())
	r.Start()
	r.Query(context.Background(), "jo")
	waitForCandidates(t, r, 3)

	r.HandleKey(KeyUp) // from 0 wraps to the last
	require.Equal(t, 2, r.Index())
	r.HandleKey(KeyDown)
	require.Equal(t, 0, r.Index())
}

func TestEscape_DismissesWithoutCommit(t *testing.T) {
	s := newFakeSearcher()
	s.results["jo"] = joUsers()
	r := NewResolver(s, testLog())
	r.Start()
	r.Query(context.Background(), "jo")
	waitForCandidates(t, r, 3)

	_, committed := r.HandleKey(KeyEscape)
	require.False(t, committed)
	require.False(t, r.Active())
	require.Empty(t, r.Candidates())
}

func TestStaleResponse_Discarded(t *testing.T) {
	s := newFakeSearcher()
	s.results["j"] = joUsers()[:1]
	s.results["jo"] = joUsers()
	gate := make(chan struct{})
	s.gates["j"] = gate

	r := NewResolver(s, testLog())
	r.Start()

	r.Query(context.Background(), "j") // slow
	r.Query(context.Background(), "jo")
	waitForCandidates(t, r, 3)

	close(gate) // the older response arrives late
	time.Sleep(20 * time.Millisecond)
	require.Len(t, r.Candidates(), 3, "stale response must not replace newer results")
}

func TestSearchFailure_ReadsAsNoResults(t *testing.T) {
	s := newFakeSearcher()
	s.err = errors.New("boom")
	r := NewResolver(s, testLog())
	r.Start()

	r.Query(context.Background(), "jo")
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, r.Candidates())
	require.True(t, r.Active(), "failure does not close the interaction")
}

func TestEnterWithoutCandidates_IsNoop(t *testing.T) {
	s := newFakeSearcher()
	r := NewResolver(s, testLog())
	r.Start()

	_, committed := r.HandleKey(KeyEnter)
	require.False(t, committed)
	require.True(t, r.Active())
}

func TestToken_HTML(t *testing.T) {
	tok := Token{ID: 7, Label: "Jo <X>"}
	require.Equal(t, `<span data-type="mention" data-id="7">@Jo &lt;X&gt;</span>`, tok.HTML())
}
