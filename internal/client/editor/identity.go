package editor

import "strconv"

// Identity is the document's addressable reference. A draft starts as
// "new" (no server id) and transitions exactly once to a persisted id on
// the first successful create; it never changes again afterwards.
type Identity struct {
	id        int64
	persisted bool
}

// NewDocument is the identity of a draft that does not exist on the server.
func NewDocument() Identity {
	return Identity{}
}

// PersistedDocument is the identity of a document with a server id.
func PersistedDocument(id int64) Identity {
	return Identity{id: id, persisted: true}
}

// IsNew reports whether the document has not been created yet.
func (i Identity) IsNew() bool {
	return !i.persisted
}

// ID returns the server id; it is only meaningful when IsNew is false.
func (i Identity) ID() int64 {
	return i.id
}

func (i Identity) String() string {
	if i.IsNew() {
		return "new"
	}
	return strconv.FormatInt(i.id, 10)
}

// Snapshot is the last (title, content, isPublic) triple known to match the
// server. It is the comparison baseline for dirtiness and is only replaced
// on a successful save, never speculatively.
type Snapshot struct {
	Title    string
	Content  string
	IsPublic bool
}
