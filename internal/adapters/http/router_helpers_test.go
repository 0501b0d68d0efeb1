package httpadapter

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/kirillkom/smartdocs/internal/config"
	"github.com/kirillkom/smartdocs/internal/core/domain"
)

const testToken = "good-token"

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     "user",
		IsActive: true,
	}
}

type authFake struct {
	registerUser *domain.User
	registerErr  error
	loginToken   *domain.AuthToken
	loginErr     error
}

func (f authFake) Register(context.Context, domain.Registration) (*domain.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if f.registerUser != nil {
		return f.registerUser, nil
	}
	return testUser(), nil
}

func (f authFake) Login(context.Context, string, string) (*domain.AuthToken, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginToken != nil {
		return f.loginToken, nil
	}
	return &domain.AuthToken{AccessToken: testToken, TokenType: "bearer", User: *testUser()}, nil
}

func (f authFake) CurrentUser(_ context.Context, token string) (*domain.User, error) {
	if token != testToken {
		return nil, domain.WrapError(domain.ErrUnauthorized, "current_user", errors.New("bad token"))
	}
	return testUser(), nil
}

type ingestFake struct {
	err          error
	gotUserID    string
	gotFilename  string
	gotMimeType  string
	gotSize      int64
	gotContent   string
	capturedByID map[string]string
}

func (f *ingestFake) Upload(_ context.Context, userID, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.gotUserID = userID
	f.gotFilename = filename
	f.gotMimeType = mimeType
	f.gotSize = size
	f.gotContent = string(raw)

	now := time.Now().UTC()
	return &domain.Document{
		ID:        "doc-1",
		UserID:    userID,
		Filename:  filename,
		MimeType:  mimeType,
		Status:    domain.StatusUploaded,
		Size:      size,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type docsFake struct {
	listErr   error
	getErr    error
	deleteErr error
	openErr   error
	updateErr error
	shareErr  error

	gotFilter     domain.DocumentFilter
	gotUserID     string
	deletedIDs    []string
	content       string
	gotUpdate     *domain.DocumentUpdate
	addedPairs    [][2]string
	removedPairs  [][2]string
	shareCallerID string
}

func (f *docsFake) List(_ context.Context, userID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.gotUserID = userID
	f.gotFilter = filter
	return []domain.Document{{ID: "doc-1", UserID: userID, Filename: "a.pdf", Status: domain.StatusReady}}, nil
}

func (f *docsFake) GetByID(_ context.Context, userID, documentID string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Document{ID: documentID, UserID: userID, Filename: "a.pdf", MimeType: "application/pdf", Size: int64(len(f.content)), Status: domain.StatusReady}, nil
}

func (f *docsFake) OpenContent(ctx context.Context, userID, documentID string) (*domain.Document, io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	doc, err := f.GetByID(ctx, userID, documentID)
	if err != nil {
		return nil, nil, err
	}
	return doc, io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *docsFake) Update(_ context.Context, userID, documentID string, update domain.DocumentUpdate) (*domain.Document, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.gotUserID = userID
	f.gotUpdate = &update
	doc := &domain.Document{ID: documentID, UserID: userID, Filename: "a.pdf", Status: domain.StatusReady}
	if update.Title != nil {
		doc.Title = *update.Title
	}
	return doc, nil
}

func (f *docsFake) AddCollaborator(_ context.Context, ownerID, documentID, collaboratorID string) error {
	if f.shareErr != nil {
		return f.shareErr
	}
	f.shareCallerID = ownerID
	f.addedPairs = append(f.addedPairs, [2]string{documentID, collaboratorID})
	return nil
}

func (f *docsFake) RemoveCollaborator(_ context.Context, ownerID, documentID, collaboratorID string) error {
	if f.shareErr != nil {
		return f.shareErr
	}
	f.shareCallerID = ownerID
	f.removedPairs = append(f.removedPairs, [2]string{documentID, collaboratorID})
	return nil
}

func (f *docsFake) Delete(_ context.Context, _, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, documentID)
	return nil
}

type dashboardFake struct {
	statsErr  error
	recentErr error
	gotLimit  int
}

func (f *dashboardFake) Stats(context.Context, string) (*domain.DashboardStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &domain.DashboardStats{
		TotalDocuments: 3,
		TotalSize:      4096,
		ByCategory:     map[string]int{"invoice": 2, "report": 1},
		ByStatus:       map[string]int{"ready": 3},
	}, nil
}

func (f *dashboardFake) RecentDocuments(_ context.Context, userID string, limit int) ([]domain.Document, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	f.gotLimit = limit
	return []domain.Document{{ID: "doc-1", UserID: userID, Filename: "a.pdf", Status: domain.StatusReady}}, nil
}

func testConfig() config.Config {
	return config.Config{
		MaxUploadBytes: 1 << 20,
	}
}
