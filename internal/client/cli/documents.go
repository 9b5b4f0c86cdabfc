package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smolyakovd/inkpad/internal/client/editor"
	"github.com/smolyakovd/inkpad/internal/client/models"
)

// List prints the documents the user can see, most recently updated first.
func (a *App) List(ctx context.Context) error {
	docs, err := a.api.ListDocuments(ctx)
	if err != nil {
		a.handleErr(err)
		return err
	}
	a.printDocs(docs)
	return nil
}

// Search runs a full-text search over accessible documents.
func (a *App) Search(ctx context.Context, q string) error {
	docs, err := a.api.SearchDocuments(ctx, q)
	if err != nil {
		a.handleErr(err)
		return err
	}
	a.printDocs(docs)
	return nil
}

func (a *App) printDocs(docs []models.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No documents.")
		return
	}
	for _, d := range docs {
		visibility := "private"
		if d.IsPublic {
			visibility = "public"
		}
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(a.out, "%6d  %-40s  %-7s  by %s  %s\n",
			d.ID, title, visibility, d.Author.Name, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

// Open loads an existing document into the editor. A load failure keeps the
// user at the main prompt.
func (a *App) Open(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: open <id>")
		return err
	}
	return a.edit(ctx, editor.PersistedDocument(id))
}

// NewDoc starts a blank draft in the editor. Nothing is sent to the server
// until the draft has settled text.
func (a *App) NewDoc(ctx context.Context) error {
	return a.edit(ctx, editor.NewDocument())
}
