package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/smolyakovd/inkpad/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a name, email and password and attempts to
// create a new account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.api.Register(ctx, name, email, string(password)); err != nil {
		a.handleErr(err)
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can now log in.")
	return nil
}

// Login prompts the user for credentials and tries to authenticate. On
// success the bearer token is persisted for later runs and the prompt
// switches to the logged-in command set.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	token, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid email or password.")
			return err
		}
		a.handleErr(err)
		return err
	}

	if err := a.tokens.Save(token); err != nil {
		a.handleErr(err)
		return err
	}

	a.mu.Lock()
	a.user = email
	a.loggedIn = true
	a.mu.Unlock()
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// Logout drops the stored token.
func (a *App) Logout(_ context.Context) error {
	if err := a.tokens.Clear(); err != nil {
		a.handleErr(err)
		return err
	}
	a.mu.Lock()
	a.user = ""
	a.loggedIn = false
	a.mu.Unlock()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// HealthCheck probes the server and reports the result.
func (a *App) HealthCheck(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		a.handleErr(err)
		return err
	}
	fmt.Fprintf(a.out, "Server is %s: %s\n", h.Status, h.Message)
	return nil
}
