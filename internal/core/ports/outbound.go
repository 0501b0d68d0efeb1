package ports

import (
	"context"
	"io"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]domain.Document, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Document, error)
	Stats(ctx context.Context, userID string) (*domain.DashboardStats, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.Classification) error
	UpdateMetadata(ctx context.Context, id string, update domain.DocumentUpdate) error
	SetCollaborators(ctx context.Context, id string, collaborators []string) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentClassifier asks the external analysis service for category/tags/summary.
type DocumentClassifier interface {
	Classify(ctx context.Context, doc *domain.Document, content io.Reader) (domain.Classification, error)
}

// TokenCodec mints and verifies access tokens.
type TokenCodec interface {
	Issue(userID, username string) (string, error)
	Verify(token string) (subject string, err error)
}
