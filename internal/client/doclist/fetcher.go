// Package doclist fetches and summarizes a user's document list for the
// dashboard and list views.
package doclist

import (
	"context"
	"sort"
	"sync"

	"github.com/kirillkom/smartdocs/internal/client/api"
	"github.com/kirillkom/smartdocs/internal/core/domain"
)

// ListAPI is the slice of the document-service client the fetcher needs.
type ListAPI interface {
	ListDocuments(ctx context.Context, query api.ListQuery) ([]domain.Document, error)
}

// Fetcher replaces a list wholesale per refresh. Each Refresh supersedes any
// in-flight one: a response is installed only while its generation is still
// current, so a slow stale fetch can never clobber a newer result.
type Fetcher struct {
	api ListAPI

	mu         sync.Mutex
	generation uint64
	docs       []domain.Document
	errMsg     string
	loading    bool
}

func NewFetcher(listAPI ListAPI) *Fetcher {
	return &Fetcher{api: listAPI}
}

// Refresh fetches with query and returns the documents it installed, or nil
// when superseded. A failed fetch leaves the list empty with an error string.
func (f *Fetcher) Refresh(ctx context.Context, query api.ListQuery) ([]domain.Document, error) {
	f.mu.Lock()
	f.generation++
	generation := f.generation
	f.loading = true
	f.mu.Unlock()

	docs, err := f.api.ListDocuments(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		// A newer refresh owns the state now.
		return nil, nil
	}
	f.loading = false
	if err != nil {
		f.docs = nil
		f.errMsg = "failed to load documents"
		return nil, err
	}
	f.docs = docs
	f.errMsg = ""
	return docs, nil
}

func (f *Fetcher) Documents() []domain.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs
}

func (f *Fetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// ErrMessage returns the user-facing error from the last completed refresh,
// empty on success.
func (f *Fetcher) ErrMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// CategoryCounts folds the list into per-category totals. Documents without a
// category are grouped under "uncategorized".
func CategoryCounts(docs []domain.Document) map[string]int {
	counts := make(map[string]int, len(docs))
	for _, doc := range docs {
		category := doc.Category
		if category == "" {
			category = "uncategorized"
		}
		counts[category]++
	}
	return counts
}

// Recent returns up to n documents ordered newest first.
func Recent(docs []domain.Document, n int) []domain.Document {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
