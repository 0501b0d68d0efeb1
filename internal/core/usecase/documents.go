package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kirillkom/smartdocs/internal/core/domain"
	"github.com/kirillkom/smartdocs/internal/core/ports"
)

type DocumentReadUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
}

func NewDocumentReadUseCase(repo ports.DocumentRepository, storage ports.ObjectStorage) *DocumentReadUseCase {
	return &DocumentReadUseCase{repo: repo, storage: storage}
}

func (uc *DocumentReadUseCase) List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	docs, err := uc.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GetByID loads a document and enforces access. A document neither owned by
// nor shared with the user is reported as not found, never as forbidden.
func (uc *DocumentReadUseCase) GetByID(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.AccessibleBy(userID) {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no access"))
	}
	return doc, nil
}

// getOwned is the stricter lookup for operations reserved to the owner.
func (uc *DocumentReadUseCase) getOwned(ctx context.Context, userID, documentID, op string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, op, errors.New("owned by another user"))
	}
	return doc, nil
}

func (uc *DocumentReadUseCase) OpenContent(ctx context.Context, userID, documentID string) (*domain.Document, io.ReadCloser, error) {
	doc, err := uc.GetByID(ctx, userID, documentID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open document content: %w", err)
	}
	return doc, rc, nil
}

// Update applies a partial metadata edit and returns the refreshed document.
func (uc *DocumentReadUseCase) Update(ctx context.Context, userID, documentID string, update domain.DocumentUpdate) (*domain.Document, error) {
	if update.IsEmpty() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update document", errors.New("no fields to update"))
	}
	if update.Title != nil && *update.Title == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update document", errors.New("title cannot be empty"))
	}
	if _, err := uc.GetByID(ctx, userID, documentID); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateMetadata(ctx, documentID, update); err != nil {
		return nil, fmt.Errorf("update document metadata: %w", err)
	}
	return uc.repo.GetByID(ctx, documentID)
}

// AddCollaborator shares the document with another user. Only the owner can
// manage sharing; granting an existing collaborator again is a no-op.
func (uc *DocumentReadUseCase) AddCollaborator(ctx context.Context, ownerID, documentID, collaboratorID string) error {
	if collaboratorID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "add collaborator", errors.New("collaborator id is required"))
	}
	doc, err := uc.getOwned(ctx, ownerID, documentID, "add collaborator")
	if err != nil {
		return err
	}
	if collaboratorID == doc.UserID {
		return domain.WrapError(domain.ErrInvalidInput, "add collaborator", errors.New("owner cannot be a collaborator"))
	}
	for _, c := range doc.Collaborators {
		if c == collaboratorID {
			return nil
		}
	}
	collaborators := append(doc.Collaborators, collaboratorID)
	if err := uc.repo.SetCollaborators(ctx, documentID, collaborators); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}
	return nil
}

// RemoveCollaborator revokes sharing. Removing a user that was never granted
// access succeeds without effect.
func (uc *DocumentReadUseCase) RemoveCollaborator(ctx context.Context, ownerID, documentID, collaboratorID string) error {
	doc, err := uc.getOwned(ctx, ownerID, documentID, "remove collaborator")
	if err != nil {
		return err
	}
	collaborators := make([]string, 0, len(doc.Collaborators))
	for _, c := range doc.Collaborators {
		if c != collaboratorID {
			collaborators = append(collaborators, c)
		}
	}
	if len(collaborators) == len(doc.Collaborators) {
		return nil
	}
	if err := uc.repo.SetCollaborators(ctx, documentID, collaborators); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	return nil
}

func (uc *DocumentReadUseCase) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := uc.getOwned(ctx, userID, documentID, "delete document")
	if err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete document content: %w", err)
	}
	if err := uc.repo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}
