package ports

import (
	"context"
	"io"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, userID, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read/edit/delete model for per-user
// documents. Reads and metadata edits are open to the owner and anyone the
// document was shared with; delete and sharing changes are owner-only.
type DocumentReader interface {
	List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]domain.Document, error)
	GetByID(ctx context.Context, userID, documentID string) (*domain.Document, error)
	OpenContent(ctx context.Context, userID, documentID string) (*domain.Document, io.ReadCloser, error)
	Update(ctx context.Context, userID, documentID string, update domain.DocumentUpdate) (*domain.Document, error)
	AddCollaborator(ctx context.Context, ownerID, documentID, collaboratorID string) error
	RemoveCollaborator(ctx context.Context, ownerID, documentID, collaboratorID string) error
	Delete(ctx context.Context, userID, documentID string) error
}

// DashboardService aggregates a user's corpus for the dashboard views.
type DashboardService interface {
	Stats(ctx context.Context, userID string) (*domain.DashboardStats, error)
	RecentDocuments(ctx context.Context, userID string, limit int) ([]domain.Document, error)
}

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.AuthToken, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}
