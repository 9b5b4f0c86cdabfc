package editor

// SaveStatus is the user-visible state of the save loop. Exactly one value
// is active at a time; transitions are event-driven (raw edits, save
// dispatch, save completion) and the machine runs for the whole session.
type SaveStatus int

const (
	// StatusUnsaved is the initial state of a brand-new document before
	// anything has been typed.
	StatusUnsaved SaveStatus = iota

	// StatusUnsavedChanges means an edit was registered but has not been
	// persisted yet.
	StatusUnsavedChanges

	// StatusSaving means a save request is in flight.
	StatusSaving

	// StatusSaved means the last save succeeded and the snapshot matches
	// what the user sees.
	StatusSaved

	// StatusErrorSaving means the last save failed; edits keep working and
	// the next qualifying change retries naturally.
	StatusErrorSaving
)

// String renders the labels the UI shows next to the document title.
func (s SaveStatus) String() string {
	switch s {
	case StatusUnsaved:
		return "Unsaved"
	case StatusUnsavedChanges:
		return "Unsaved changes"
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		return "Saved"
	case StatusErrorSaving:
		return "Error saving"
	default:
		return "Unknown"
	}
}
