package api

import (
	"context"

	"github.com/smolyakovd/inkpad/internal/client/models"
)

// TokenProvider supplies the bearer credential attached to authenticated
// requests. Implementations decide where the token lives (a file, memory,
// a keyring); returning an error that wraps ErrUnauthorized signals that
// the user has to log in again before any request is attempted.
type TokenProvider interface {
	Token() (string, error)
}

// Client is the remote knowledge-base API as seen by the editor. All
// methods honor context cancellation; errors are mapped to the package
// sentinels where the HTTP status allows it.
type Client interface {
	// Register creates an account and returns nothing; the caller logs in
	// afterwards.
	Register(ctx context.Context, name, email, password string) error

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)

	// Health probes the server's liveness endpoint.
	Health(ctx context.Context) (*models.Health, error)

	// ListDocuments returns all documents the account can access,
	// most recently updated first.
	ListDocuments(ctx context.Context) ([]models.Document, error)

	// GetDocument loads a single document by id.
	GetDocument(ctx context.Context, id int64) (*models.Document, error)

	// CreateDocument persists a brand-new document and returns it with
	// its server-assigned identity.
	CreateDocument(ctx context.Context, p models.DocumentPayload) (*models.Document, error)

	// UpdateDocument replaces the document addressed by id.
	UpdateDocument(ctx context.Context, id int64, p models.DocumentPayload) (*models.Document, error)

	// ListVersions returns the document's historical versions, newest first.
	ListVersions(ctx context.Context, id int64) ([]models.Version, error)

	// SearchUsers finds accounts matching q, for mentions and sharing.
	SearchUsers(ctx context.Context, q string) ([]models.User, error)

	// ShareDocument grants level access on the document to the account
	// registered under email.
	ShareDocument(ctx context.Context, id int64, email, level string) error

	// SearchDocuments runs a full-text search over accessible documents.
	SearchDocuments(ctx context.Context, q string) ([]models.Document, error)
}
