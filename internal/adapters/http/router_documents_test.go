package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestUploadDocumentSuccess(t *testing.T) {
	ingest := &ingestFake{}
	handler := NewRouter(testConfig(), authFake{}, ingest, &docsFake{}, &dashboardFake{}, nil).Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "invoice.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte("pdf-bytes")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := authed(httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if ingest.gotUserID != "user-1" {
		t.Fatalf("expected upload scoped to authenticated user, got %q", ingest.gotUserID)
	}
	if ingest.gotFilename != "invoice.pdf" || ingest.gotContent != "pdf-bytes" {
		t.Fatalf("unexpected upload capture: %+v", ingest)
	}

	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc["id"] != "doc-1" || doc["status"] != "uploaded" {
		t.Fatalf("unexpected response: %+v", doc)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{}, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodPost, "/api/documents/upload", bytes.NewBufferString("plain-text")))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentRequiresAuth(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{}, &dashboardFake{}, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestListDocumentsForwardsFilter(t *testing.T) {
	docs := &docsFake{}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodGet, "/api/documents?category=invoice&search=acme", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if docs.gotUserID != "user-1" {
		t.Fatalf("expected list scoped to authenticated user, got %q", docs.gotUserID)
	}
	if docs.gotFilter.Category != "invoice" || docs.gotFilter.Search != "acme" {
		t.Fatalf("unexpected filter: %+v", docs.gotFilter)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{
		getErr: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing")),
	}, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestPatchDocumentUpdatesMetadata(t *testing.T) {
	docs := &docsFake{}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	body := bytes.NewBufferString(`{"title":"Q3 invoice","tags":["finance"]}`)
	req := authed(httptest.NewRequest(http.MethodPatch, "/api/documents/doc-1", body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if docs.gotUserID != "user-1" {
		t.Fatalf("expected update scoped to authenticated user, got %q", docs.gotUserID)
	}
	if docs.gotUpdate == nil || docs.gotUpdate.Title == nil || *docs.gotUpdate.Title != "Q3 invoice" {
		t.Fatalf("update not forwarded: %+v", docs.gotUpdate)
	}
	if len(docs.gotUpdate.Tags) != 1 || docs.gotUpdate.Tags[0] != "finance" {
		t.Fatalf("tags not forwarded: %+v", docs.gotUpdate)
	}

	var doc map[string]any
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc["title"] != "Q3 invoice" {
		t.Fatalf("unexpected response: %+v", doc)
	}
}

func TestPatchDocumentRejectsMalformedBody(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{}, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodPatch, "/api/documents/doc-1", bytes.NewBufferString("{not json")))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAddCollaboratorReturns204(t *testing.T) {
	docs := &docsFake{}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	body := bytes.NewBufferString(`{"user_id":"user-2"}`)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/collaborators", body))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if docs.shareCallerID != "user-1" {
		t.Fatalf("expected grant scoped to authenticated user, got %q", docs.shareCallerID)
	}
	if len(docs.addedPairs) != 1 || docs.addedPairs[0] != [2]string{"doc-1", "user-2"} {
		t.Fatalf("unexpected grants: %v", docs.addedPairs)
	}
}

func TestRemoveCollaboratorReturns204(t *testing.T) {
	docs := &docsFake{}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1/collaborators/user-2", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(docs.removedPairs) != 1 || docs.removedPairs[0] != [2]string{"doc-1", "user-2"} {
		t.Fatalf("unexpected revocations: %v", docs.removedPairs)
	}
}

func TestCollaboratorRoutesRejectOtherMethods(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{}, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/collaborators", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestDeleteDocumentReturns204(t *testing.T) {
	docs := &docsFake{}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(docs.deletedIDs) != 1 || docs.deletedIDs[0] != "doc-1" {
		t.Fatalf("unexpected deletions: %v", docs.deletedIDs)
	}
}

func TestDownloadDocumentStreamsContent(t *testing.T) {
	docs := &docsFake{content: "file-bytes"}
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, docs, &dashboardFake{}, nil).Handler()

	req := authed(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/download", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := res.Header().Get("Content-Disposition"); got != `attachment; filename="a.pdf"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if res.Body.String() != "file-bytes" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler := NewRouter(testConfig(), authFake{}, &ingestFake{}, &docsFake{}, &dashboardFake{}, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}
