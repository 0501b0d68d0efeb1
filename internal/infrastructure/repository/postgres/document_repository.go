package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	title TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	category TEXT,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	collaborators JSONB NOT NULL DEFAULT '[]'::jsonb,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	summary TEXT,
	status TEXT NOT NULL,
	error_message TEXT,
	size BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const documentColumns = `id, user_id, filename, title, mime_type, storage_path, category, tags, collaborators, confidence, summary, status, error_message, size, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	collaboratorsJSON, err := marshalCollaborators(doc.Collaborators)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		doc.ID, doc.UserID, doc.Filename, doc.Title, doc.MimeType, doc.StoragePath, doc.Category,
		tagsJSON, collaboratorsJSON, doc.Confidence, doc.Summary, string(doc.Status), doc.Error, doc.Size,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, userID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
`
	args := []any{userID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf("AND category = $%d\n", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		n := len(args)
		query += fmt.Sprintf("AND (filename ILIKE $%d OR title ILIKE $%d OR summary ILIKE $%d)\n", n, n, n)
	}
	query += "ORDER BY created_at DESC"

	return r.queryDocuments(ctx, query, args...)
}

// likeEscaper keeps user-supplied search terms literal inside ILIKE patterns.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *DocumentRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Document, error) {
	return r.queryDocuments(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
}

func (r *DocumentRepository) Stats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(category, ''), status, COUNT(*), COALESCE(SUM(size), 0)
FROM documents
WHERE user_id = $1
GROUP BY category, status
`, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.DashboardStats{
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for rows.Next() {
		var category, status string
		var count int
		var size int64
		if err := rows.Scan(&category, &status, &count, &size); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.TotalDocuments += count
		stats.TotalSize += size
		if category != "" {
			stats.ByCategory[category] += count
		}
		stats.ByStatus[status] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(res, "update document status", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification) error {
	tagsJSON, err := json.Marshal(cls.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET category = $2, tags = $3, confidence = $4, summary = $5, updated_at = $6
WHERE id = $1
`, id, cls.Category, tagsJSON, cls.Confidence, cls.Summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireRowAffected(res, "save classification", id)
}

// UpdateMetadata applies the non-nil fields of a partial edit. An empty
// update is a no-op.
func (r *DocumentRepository) UpdateMetadata(ctx context.Context, id string, update domain.DocumentUpdate) error {
	set := make([]string, 0, 4)
	args := []any{id}
	if update.Title != nil {
		args = append(args, *update.Title)
		set = append(set, fmt.Sprintf("title = $%d", len(args)))
	}
	if update.Category != nil {
		args = append(args, *update.Category)
		set = append(set, fmt.Sprintf("category = $%d", len(args)))
	}
	if update.Tags != nil {
		tagsJSON, err := json.Marshal(update.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags: %w", err)
		}
		args = append(args, tagsJSON)
		set = append(set, fmt.Sprintf("tags = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))

	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(set, ", ")+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("update document metadata: %w", err)
	}
	return requireRowAffected(res, "update document metadata", id)
}

func (r *DocumentRepository) SetCollaborators(ctx context.Context, id string, collaborators []string) error {
	collaboratorsJSON, err := marshalCollaborators(collaborators)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET collaborators = $2, updated_at = $3
WHERE id = $1
`, id, collaboratorsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set collaborators: %w", err)
	}
	return requireRowAffected(res, "set collaborators", id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRowAffected(res, "delete document", id)
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func marshalCollaborators(collaborators []string) ([]byte, error) {
	if collaborators == nil {
		collaborators = []string{}
	}
	raw, err := json.Marshal(collaborators)
	if err != nil {
		return nil, fmt.Errorf("marshal collaborators: %w", err)
	}
	return raw, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var category, summary, errMessage sql.NullString
	var tagsRaw, collaboratorsRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Filename, &doc.Title, &doc.MimeType, &doc.StoragePath,
		&category, &tagsRaw, &collaboratorsRaw, &doc.Confidence, &summary, &status, &errMessage, &doc.Size,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(collaboratorsRaw, &doc.Collaborators); err != nil {
		return nil, fmt.Errorf("unmarshal collaborators: %w", err)
	}
	doc.Category = category.String
	doc.Summary = summary.String
	doc.Error = errMessage.String
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func requireRowAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
