package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

type readRepoFake struct {
	docRepoBase
	doc           *domain.Document
	listed        []domain.Document
	gotFilter     domain.DocumentFilter
	deletedID     string
	updatedWith   *domain.DocumentUpdate
	collaborators []string
	setCalled     bool
}

func (f *readRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *readRepoFake) List(_ context.Context, _ string, filter domain.DocumentFilter) ([]domain.Document, error) {
	f.gotFilter = filter
	return f.listed, nil
}

func (f *readRepoFake) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return nil
}

func (f *readRepoFake) UpdateMetadata(_ context.Context, _ string, update domain.DocumentUpdate) error {
	f.updatedWith = &update
	if update.Title != nil {
		f.doc.Title = *update.Title
	}
	return nil
}

func (f *readRepoFake) SetCollaborators(_ context.Context, _ string, collaborators []string) error {
	f.setCalled = true
	f.collaborators = collaborators
	f.doc.Collaborators = collaborators
	return nil
}

func TestListPassesFilter(t *testing.T) {
	repo := &readRepoFake{listed: []domain.Document{{ID: "doc-1"}}}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	docs, err := uc.List(context.Background(), "user-1", domain.DocumentFilter{Category: "legal", Search: "nda"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if repo.gotFilter.Category != "legal" || repo.gotFilter.Search != "nda" {
		t.Fatalf("filter not forwarded: %+v", repo.gotFilter)
	}
}

func TestGetByIDHidesForeignDocuments(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	if _, err := uc.GetByID(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("owner read error = %v", err)
	}

	_, err := uc.GetByID(context.Background(), "user-2", "doc-1")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound for foreign document, got %v", err)
	}
}

func TestGetByIDAllowsCollaborator(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2"}
	uc := NewDocumentReadUseCase(&readRepoFake{doc: doc}, &storageFake{})

	got, err := uc.GetByID(context.Background(), "user-2", "doc-1")
	if err != nil {
		t.Fatalf("collaborator read error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Fatalf("unexpected document %+v", got)
	}
}

func TestUpdateEditsMetadataAndReturnsFreshDocument(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	title := "Invoice Q3"
	doc, err := uc.Update(context.Background(), "user-1", "doc-1", domain.DocumentUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if doc.Title != "Invoice Q3" {
		t.Fatalf("expected refreshed title, got %q", doc.Title)
	}
	if repo.updatedWith == nil || repo.updatedWith.Title == nil || *repo.updatedWith.Title != "Invoice Q3" {
		t.Fatalf("update not forwarded: %+v", repo.updatedWith)
	}
}

func TestUpdateAllowsCollaborator(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2"}
	repo := &readRepoFake{doc: doc}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	category := "legal"
	if _, err := uc.Update(context.Background(), "user-2", "doc-1", domain.DocumentUpdate{Category: &category}); err != nil {
		t.Fatalf("collaborator update error = %v", err)
	}
}

func TestUpdateRejectsEmptyAndForeign(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	_, err := uc.Update(context.Background(), "user-1", "doc-1", domain.DocumentUpdate{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty update, got %v", err)
	}

	title := "stolen"
	_, err = uc.Update(context.Background(), "user-2", "doc-1", domain.DocumentUpdate{Title: &title})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound for foreign update, got %v", err)
	}
	if repo.updatedWith != nil {
		t.Fatalf("foreign update must not reach the repository")
	}
}

func TestAddCollaboratorOwnerOnly(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2"}
	repo := &readRepoFake{doc: doc}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	if err := uc.AddCollaborator(context.Background(), "user-1", "doc-1", "user-3"); err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
	if len(repo.collaborators) != 2 || repo.collaborators[1] != "user-3" {
		t.Fatalf("unexpected collaborators %v", repo.collaborators)
	}

	err := uc.AddCollaborator(context.Background(), "user-2", "doc-1", "user-4")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("collaborators must not manage sharing, got %v", err)
	}
}

func TestAddCollaboratorDuplicateIsNoop(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2"}
	repo := &readRepoFake{doc: doc}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	if err := uc.AddCollaborator(context.Background(), "user-1", "doc-1", "user-2"); err != nil {
		t.Fatalf("AddCollaborator() error = %v", err)
	}
	if repo.setCalled {
		t.Fatalf("duplicate grant must not rewrite collaborators")
	}
}

func TestAddCollaboratorRejectsOwnerAndEmpty(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	if err := uc.AddCollaborator(context.Background(), "user-1", "doc-1", "user-1"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for owner grant, got %v", err)
	}
	if err := uc.AddCollaborator(context.Background(), "user-1", "doc-1", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestRemoveCollaboratorRevokesAccess(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2", "user-3"}
	repo := &readRepoFake{doc: doc}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	if err := uc.RemoveCollaborator(context.Background(), "user-1", "doc-1", "user-2"); err != nil {
		t.Fatalf("RemoveCollaborator() error = %v", err)
	}
	if len(repo.collaborators) != 1 || repo.collaborators[0] != "user-3" {
		t.Fatalf("unexpected collaborators %v", repo.collaborators)
	}

	repo.setCalled = false
	if err := uc.RemoveCollaborator(context.Background(), "user-1", "doc-1", "user-9"); err != nil {
		t.Fatalf("revoking an unknown user must succeed, got %v", err)
	}
	if repo.setCalled {
		t.Fatalf("revoking an unknown user must not rewrite collaborators")
	}
}

func TestOpenContentStreamsBlob(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	storage := &storageFake{content: "pdf bytes"}
	uc := NewDocumentReadUseCase(repo, storage)

	doc, rc, err := uc.OpenContent(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("OpenContent() error = %v", err)
	}
	defer rc.Close()

	if doc.Filename != "invoice.pdf" {
		t.Fatalf("unexpected document %+v", doc)
	}
	raw, _ := io.ReadAll(rc)
	if string(raw) != "pdf bytes" {
		t.Fatalf("expected blob content, got %q", raw)
	}
}

func TestDeleteRemovesBlobThenMetadata(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	storage := &storageFake{}
	uc := NewDocumentReadUseCase(repo, storage)

	if err := uc.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if storage.deletedKey != "user-1/doc-1_invoice.pdf" {
		t.Fatalf("expected blob delete, got %q", storage.deletedKey)
	}
	if repo.deletedID != "doc-1" {
		t.Fatalf("expected metadata delete, got %q", repo.deletedID)
	}
}

func TestDeleteForeignDocumentLeavesBlob(t *testing.T) {
	repo := &readRepoFake{doc: testDoc()}
	storage := &storageFake{}
	uc := NewDocumentReadUseCase(repo, storage)

	err := uc.Delete(context.Background(), "user-2", "doc-1")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if storage.deletedKey != "" || repo.deletedID != "" {
		t.Fatalf("delete side effects for foreign document: %q %q", storage.deletedKey, repo.deletedID)
	}
}

func TestDeleteStaysOwnerOnlyForCollaborators(t *testing.T) {
	doc := testDoc()
	doc.Collaborators = []string{"user-2"}
	repo := &readRepoFake{doc: doc}
	uc := NewDocumentReadUseCase(repo, &storageFake{})

	err := uc.Delete(context.Background(), "user-2", "doc-1")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if repo.deletedID != "" {
		t.Fatalf("collaborator delete must not reach the repository")
	}
}
