package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smolyakovd/inkpad/internal/client/editor"
	"github.com/smolyakovd/inkpad/internal/client/history"
	"github.com/smolyakovd/inkpad/internal/client/mention"
	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/client/sharing"
)

// searchWait bounds how long interactive flows wait for an async user
// search before giving up on the result.
const searchWait = 5 * time.Second

// edit opens the editing loop for one document. Every text command feeds
// the autosave session; saving happens in the background while the user
// keeps typing commands.
func (a *App) edit(ctx context.Context, id editor.Identity) error {
	sess, err := editor.Open(ctx, a.api, id, editor.Options{
		TitleDebounce:   a.config.TitleDebounce,
		ContentDebounce: a.config.ContentDebounce,
		OnStatus: func(s editor.SaveStatus) {
			fmt.Fprintf(a.out, "[%s]\n", s)
		},
		OnIdentity: func(id editor.Identity) {
			fmt.Fprintf(a.out, "[draft saved as document %d]\n", id.ID())
		},
		Logger: a.log,
	})
	if err != nil {
		a.handleErr(err)
		return err
	}
	defer sess.Close()

	fmt.Fprintf(a.out, "Editing %s (type 'help' for commands)\n", id)

	for {
		fmt.Fprintf(a.out, "edit %s [%s]> ", sess.Identity(), sess.Status())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: title <text>, edit, public on|off, show, status, mention <text>, history, share, close")

		case "title":
			sess.SetTitle(strings.Join(args, " "))

		case "edit":
			content, err := GetMultiline(a.reader, "Enter content", a.out)
			if err != nil {
				return nil
			}
			sess.SetContent(content)

		case "public":
			switch strings.Join(args, "") {
			case "on":
				sess.SetPublic(true)
			case "off":
				sess.SetPublic(false)
			default:
				fmt.Fprintln(a.out, "Usage: public on|off")
			}

		case "show":
			a.showDocument(sess)

		case "status":
			fmt.Fprintln(a.out, sess.Status())

		case "mention":
			if len(args) == 0 {
				fmt.Fprintln(a.out, "Usage: mention <text>")
				continue
			}
			a.mention(ctx, sess, strings.Join(args, " "))

		case "history":
			a.history(ctx, sess)

		case "share":
			a.share(ctx, sess)

		case "close":
			return nil

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}

func (a *App) showDocument(sess *editor.Session) {
	visibility := "private"
	if sess.IsPublic() {
		visibility = "public"
	}
	fmt.Fprintf(a.out, "Document: %s (%s)\n", sess.Identity(), visibility)
	fmt.Fprintf(a.out, "Title: %s\n", sess.Title())
	fmt.Fprintln(a.out, "---")
	fmt.Fprintln(a.out, sess.Content())
	fmt.Fprintln(a.out, "---")
}

// mention runs one @-mention interaction: search for the typed text, let
// the user move the highlight through the candidates, and append the chosen
// reference token to the content.
func (a *App) mention(ctx context.Context, sess *editor.Session, q string) {
	r := mention.NewResolver(a.api, a.log)
	items := make(chan []models.User, 1)
	r.OnItems(func(users []models.User) {
		select {
		case items <- users:
		default:
		}
	})

	r.Start()
	r.Query(ctx, q)

	var users []models.User
	select {
	case users = <-items:
	case <-time.After(searchWait):
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No matching users.")
		r.Dismiss()
		return
	}

	for {
		for i, u := range r.Candidates() {
			marker := "  "
			if i == r.Index() {
				marker = "> "
			}
			fmt.Fprintf(a.out, "%s%s <%s>\n", marker, u.Name, u.Email)
		}

		input, err := getSimpleText(a.reader, "j=down, k=up, empty=insert, q=cancel", a.out)
		if err != nil {
			r.Dismiss()
			return
		}
		switch input {
		case "j":
			r.HandleKey(mention.KeyDown)
		case "k":
			r.HandleKey(mention.KeyUp)
		case "":
			tok, committed := r.HandleKey(mention.KeyEnter)
			if committed {
				sess.SetContent(sess.Content() + " " + tok.HTML())
				fmt.Fprintf(a.out, "Inserted mention of %s.\n", tok.Label)
			}
			return
		case "q":
			r.HandleKey(mention.KeyEscape)
			return
		default:
			fmt.Fprintln(a.out, "Unknown key:", input)
		}
	}
}

// history shows the version list for a persisted document and renders an
// inline diff between a picked version and the live draft.
func (a *App) history(ctx context.Context, sess *editor.Session) {
	id := sess.Identity()
	if id.IsNew() {
		fmt.Fprintln(a.out, "The draft has no history yet.")
		return
	}

	v := history.NewViewer(a.api, a.log, id.ID())
	v.Load(ctx)

	versions := v.Versions()
	if len(versions) == 0 {
		fmt.Fprintln(a.out, "No previous versions.")
		return
	}
	for i, ver := range versions {
		fmt.Fprintf(a.out, "%3d  %s  %s  by %s\n",
			i, ver.CreatedAt.Format("2006-01-02 15:04"), ver.Title, ver.Author.Name)
	}

	input, err := getSimpleText(a.reader, "Version number to compare (empty to cancel)", a.out)
	if err != nil || input == "" {
		return
	}
	i, err := strconv.Atoi(input)
	if err != nil {
		fmt.Fprintln(a.out, "Not a number:", input)
		return
	}
	if err := v.Select(i); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	diff, _ := v.Diff(sess.Content())
	fmt.Fprintln(a.out, "--- selected version vs current draft ---")
	fmt.Fprintln(a.out, diff)
}

// share grants another account access to a persisted document, with a
// debounced user search to find the right email.
func (a *App) share(ctx context.Context, sess *editor.Session) {
	id := sess.Identity()
	if id.IsNew() {
		fmt.Fprintln(a.out, "Save the draft before sharing it.")
		return
	}

	d := sharing.NewDialog(a.api, a.log, id.ID(), a.config.UserSearchDebounce)
	defer d.Close()

	results := make(chan []models.User, 1)
	d.OnResults(func(users []models.User) {
		select {
		case results <- users:
		default:
		}
	})

	q, err := getSimpleText(a.reader, "Search user by name or email", a.out)
	if err != nil {
		return
	}
	if q != "" {
		d.SetQuery(ctx, q)
		select {
		case users := <-results:
			for _, u := range users {
				fmt.Fprintf(a.out, "  %s <%s>\n", u.Name, u.Email)
			}
			if len(users) == 0 {
				fmt.Fprintln(a.out, "No matching users.")
			}
		case <-time.After(searchWait):
		}
	}

	email, err := getSimpleText(a.reader, "Email to share with (empty to cancel)", a.out)
	if err != nil || email == "" {
		return
	}
	level, err := getSimpleText(a.reader, "Permission (VIEW or EDIT, default VIEW)", a.out)
	if err != nil {
		return
	}

	if err := d.Share(ctx, email, strings.ToUpper(level)); err != nil {
		a.handleErr(err)
		return
	}
	fmt.Fprintln(a.out, "Shared.")
}
