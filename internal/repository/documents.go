package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rrsartgit/legalnexus/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetExtractedText(ctx context.Context, id, text string) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, user_id, name, description, file_path, file_url, file_size, file_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Name,
		doc.Description,
		doc.FilePath,
		doc.FileURL,
		doc.FileSize,
		doc.FileType,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document

	query := `
		SELECT id, user_id, name, description, file_path, file_url, file_size, file_type, status, extracted_text, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &doc, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	docs := []models.Document{}

	query := `
		SELECT id, user_id, name, description, file_path, file_url, file_size, file_type, status, extracted_text, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &docs, query, userID); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE documents
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (r *documentRepository) SetExtractedText(ctx context.Context, id, text string) error {
	query := `
		UPDATE documents
		SET extracted_text = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, text, time.Now())
	return err
}
