package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

var errNotImplemented = errors.New("not implemented")

// docRepoBase satisfies ports.DocumentRepository with failing stubs so each
// test fake only overrides the methods it cares about.
type docRepoBase struct{}

func (docRepoBase) Create(context.Context, *domain.Document) error { return errNotImplemented }
func (docRepoBase) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errNotImplemented
}
func (docRepoBase) List(context.Context, string, domain.DocumentFilter) ([]domain.Document, error) {
	return nil, errNotImplemented
}
func (docRepoBase) ListRecent(context.Context, string, int) ([]domain.Document, error) {
	return nil, errNotImplemented
}
func (docRepoBase) Stats(context.Context, string) (*domain.DashboardStats, error) {
	return nil, errNotImplemented
}
func (docRepoBase) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return errNotImplemented
}
func (docRepoBase) SaveClassification(context.Context, string, domain.Classification) error {
	return errNotImplemented
}
func (docRepoBase) UpdateMetadata(context.Context, string, domain.DocumentUpdate) error {
	return errNotImplemented
}
func (docRepoBase) SetCollaborators(context.Context, string, []string) error {
	return errNotImplemented
}
func (docRepoBase) Delete(context.Context, string) error { return errNotImplemented }

type storageFake struct {
	savedKey   string
	savedBody  string
	content    string
	deletedKey string
	saveErr    error
	openErr    error
	deleteErr  error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedKey = key
	return nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errNotImplemented
}
