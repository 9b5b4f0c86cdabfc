// Package cli is the interactive terminal frontend: an outer REPL for
// account and document management, and an inner editing loop per opened
// document that drives the autosave session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/smolyakovd/inkpad/internal/client/api"
	"github.com/smolyakovd/inkpad/internal/client/auth"
	"github.com/smolyakovd/inkpad/internal/client/config"
	"github.com/smolyakovd/inkpad/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config *config.Config
	log    logging.Logger
	api    api.Client
	tokens *auth.FileTokenStore
	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	mode     Mode
	user     string
	loggedIn bool
}

func NewApp(c *config.Config, log logging.Logger) *App {
	tokens := auth.NewFileTokenStore(c.TokenFile)
	client := api.NewHTTPClient(c.APIBaseURL, auth.NewTokenSource(tokens), log)

	a := &App{
		config: c,
		log:    log,
		api:    client,
		tokens: tokens,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	// a stored, unexpired token resumes the previous session
	if _, err := tokens.Load(); err == nil {
		a.loggedIn = true
	}
	return a
}

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "InkPad CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.user != "" {
		s = a.user + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher periodically probes the server's health endpoint
// and flips the connectivity mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			_, err := a.api.Health(probeCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// handleErr reports a command failure. An unauthorized response anywhere
// drops the stored token and sends the user back to the login commands,
// mirroring how the web client redirects on a rejected credential.
func (a *App) handleErr(err error) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		a.tokens.Clear() //nolint:errcheck
		a.mu.Lock()
		a.loggedIn = false
		a.user = ""
		a.mu.Unlock()
		fmt.Fprintln(a.out, "Session expired, please log in again.")
	case errors.Is(err, api.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later.")
	default:
		fmt.Fprintln(a.out, "Error:", err.Error())
	}
}
