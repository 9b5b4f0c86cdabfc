// Package models holds the wire types shared by the API client and the
// editor components. JSON field casing follows the server's serializer:
// record metadata (ID, CreatedAt, UpdatedAt) is capitalized, domain fields
// are lowerCamel.
package models

import "time"

// User identifies an account. It doubles as a mention candidate in the
// editor's autocomplete flow.
type User struct {
	ID    int64  `json:"ID"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Document is the full server representation of a document.
type Document struct {
	ID        int64     `json:"ID"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"isPublic"`
	AuthorID  int64     `json:"authorId"`
	Author    User      `json:"author"`
}

// DocumentPayload is the request body for creates and updates. Saves are
// whole-document replacements, so all three fields are always sent.
type DocumentPayload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

// Version is an immutable historical snapshot of a document, captured by
// the server before each update. Lists arrive newest first.
type Version struct {
	ID         int64     `json:"ID"`
	CreatedAt  time.Time `json:"CreatedAt"`
	DocumentID int64     `json:"documentId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"authorId"`
	Author     User      `json:"author"`
}

// Health is the response of the health probe endpoint.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Permission levels accepted by the sharing endpoint.
const (
	PermissionView = "VIEW"
	PermissionEdit = "EDIT"
)
