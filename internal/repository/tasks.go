package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rrsartgit/legalnexus/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	// ClaimNextPending atomically moves the oldest pending task of the given
	// type to "processing" and returns it. Returns nil when nothing is pending.
	ClaimNextPending(ctx context.Context, taskType string) (*models.Task, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, document_id, user_id, task_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.DocumentID,
		task.UserID,
		task.TaskType,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)

	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task

	query := `
		SELECT id, document_id, user_id, task_type, status, error, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &task, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) ClaimNextPending(ctx context.Context, taskType string) (*models.Task, error) {
	var task models.Task

	// FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming the same row.
	query := `
		UPDATE tasks
		SET status = 'processing', updated_at = $2
		WHERE id = (
			SELECT id FROM tasks
			WHERE status = 'pending' AND task_type = $1
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, document_id, user_id, task_type, status, error, created_at, updated_at
	`

	err := r.db.GetContext(ctx, &task, query, taskType, time.Now())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) MarkCompleted(ctx context.Context, id string) error {
	query := `
		UPDATE tasks
		SET status = 'completed', updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

func (r *taskRepository) MarkFailed(ctx context.Context, id, reason string) error {
	query := `
		UPDATE tasks
		SET status = 'failed', error = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, reason, time.Now())
	return err
}
