// Package history implements the version-history viewer: an ordered,
// read-only list of a document's past versions, one of which can be picked
// and compared against the live draft.
package history

import (
	"context"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// VersionStore is the slice of the remote API the viewer needs.
type VersionStore interface {
	ListVersions(ctx context.Context, id int64) ([]models.Version, error)
}

// Panes is a side-by-side comparison: the selected version's content on
// one side, the live unsaved draft on the other. Neither side is altered
// by the selection.
type Panes struct {
	VersionContent string
	LiveContent    string
}

// Viewer holds the version list for one activation. The list is fetched
// once per activation and not refreshed after later saves; reopening the
// viewer picks up new versions.
type Viewer struct {
	store VersionStore
	log   logging.Logger

	docID    int64
	versions []models.Version
	selected int
}

// NewViewer creates a viewer for the persisted document docID.
func NewViewer(store VersionStore, log logging.Logger, docID int64) *Viewer {
	return &Viewer{store: store, log: log, docID: docID, selected: -1}
}

// Load fetches the version list, newest first. A fetch failure is local to
// the viewer: the list stays empty and the editor keeps working.
func (v *Viewer) Load(ctx context.Context) {
	versions, err := v.store.ListVersions(ctx, v.docID)
	if err != nil {
		v.log.Warn(ctx, "version list unavailable", "doc", v.docID, "err", err)
		v.versions = nil
		v.selected = -1
		return
	}
	v.versions = versions
	v.selected = -1
}

// Versions returns the fetched list, newest first.
func (v *Viewer) Versions() []models.Version {
	return v.versions
}

// Select picks the version at index i for comparison.
func (v *Viewer) Select(i int) error {
	if i < 0 || i >= len(v.versions) {
		return fmt.Errorf("version index %d out of range", i)
	}
	v.selected = i
	return nil
}

// Selected returns the picked version, if any. The default state is no
// selection.
func (v *Viewer) Selected() (models.Version, bool) {
	if v.selected < 0 {
		return models.Version{}, false
	}
	return v.versions[v.selected], true
}

// Panes returns the two comparison panes for the current selection against
// the live draft content. ok is false while nothing is selected.
func (v *Viewer) Panes(liveContent string) (Panes, bool) {
	sel, ok := v.Selected()
	if !ok {
		return Panes{}, false
	}
	return Panes{VersionContent: sel.Content, LiveContent: liveContent}, true
}

// Diff renders an inline character diff from the selected version to the
// live draft, for terminals that cannot show two panes side by side.
func (v *Viewer) Diff(liveContent string) (string, bool) {
	sel, ok := v.Selected()
	if !ok {
		return "", false
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(sel.Content, liveContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs), true
}
