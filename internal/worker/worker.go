package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rrsartgit/legalnexus/internal/extractor"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/repository"
	"github.com/rrsartgit/legalnexus/internal/storage"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

// Worker owns the document_analysis task lifecycle: it claims pending tasks,
// extracts text from the stored file and drives each task to a terminal state
// (completed or failed). Clients observe progress by polling the task record.
type Worker struct {
	tasks        repository.TaskRepository
	docs         repository.DocumentRepository
	storage      storage.Storage
	logger       *utils.Logger
	pollInterval time.Duration
}

func New(tasks repository.TaskRepository, docs repository.DocumentRepository, store storage.Storage, logger *utils.Logger, pollInterval time.Duration) *Worker {
	return &Worker{
		tasks:        tasks,
		docs:         docs,
		storage:      store,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run polls for pending tasks until the context is cancelled. When a claim
// succeeds it immediately polls again so a backlog drains without waiting out
// the interval.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		for {
			claimed, err := w.ProcessNext(ctx)
			if err != nil {
				w.logger.Error("task processing failed", "error", err)
				break
			}
			if !claimed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessNext claims and processes at most one pending task. It reports
// whether a task was claimed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	task, err := w.tasks.ClaimNextPending(ctx, models.TaskTypeDocumentAnalysis)
	if err != nil {
		return false, fmt.Errorf("failed to claim task: %w", err)
	}
	if task == nil {
		return false, nil
	}

	if err := w.process(ctx, task); err != nil {
		w.logger.Error("analysis failed", "task_id", task.ID, "doc_id", task.DocumentID, "error", err)
		if markErr := w.tasks.MarkFailed(ctx, task.ID, err.Error()); markErr != nil {
			w.logger.Error("failed to mark task failed", "task_id", task.ID, "error", markErr)
		}
		return true, nil
	}

	if err := w.tasks.MarkCompleted(ctx, task.ID); err != nil {
		w.logger.Error("failed to mark task completed", "task_id", task.ID, "error", err)
	} else {
		w.logger.Info("task completed", "task_id", task.ID, "doc_id", task.DocumentID)
	}

	return true, nil
}

func (w *Worker) process(ctx context.Context, task *models.Task) error {
	doc, err := w.docs.GetByID(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", task.DocumentID)
	}

	// Only PDFs carry extractable text. Image uploads complete without text.
	if doc.FileType != "application/pdf" {
		return nil
	}

	data, err := w.storage.Download(ctx, doc.FilePath)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	text, err := extractor.ExtractPDF(data)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	if err := w.docs.SetExtractedText(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("failed to save extracted text: %w", err)
	}

	return nil
}
