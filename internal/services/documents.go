package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/repository"
	"github.com/rrsartgit/legalnexus/internal/storage"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

type DocumentService interface {
	UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	GetDocument(ctx context.Context, userID, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, userID string) ([]models.Document, error)
	UpdateStatus(ctx context.Context, userID string, elevated bool, id, status string) error
	GetTask(ctx context.Context, userID, id string) (*models.Task, error)
}

type documentService struct {
	docs    repository.DocumentRepository
	tasks   repository.TaskRepository
	storage storage.Storage
	logger  *utils.Logger
}

func NewDocumentService(docs repository.DocumentRepository, tasks repository.TaskRepository, store storage.Storage, logger *utils.Logger) DocumentService {
	return &documentService{
		docs:    docs,
		tasks:   tasks,
		storage: store,
		logger:  logger,
	}
}

// UploadDocument stores the file, then the metadata row, then the analysis
// task. The metadata insert is the commit point: if it fails, the stored
// object is deleted again so no orphaned blob survives. A failed task insert
// is logged and accepted; the document itself stays valid.
func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	docID := utils.GenerateID()
	key := fmt.Sprintf("documents/%s/%s", req.UserID, utils.ObjectName(req.Filename))

	if err := s.storage.Upload(ctx, key, req.File, req.ContentType); err != nil {
		s.logger.Error("failed to upload to storage", "error", err, "key", key)
		return nil, utils.NewInternalError("Failed to store document")
	}

	title := req.Title
	if title == "" {
		title = req.Filename
	}

	now := time.Now()
	doc := &models.Document{
		ID:          docID,
		UserID:      req.UserID,
		Name:        title,
		Description: req.Description,
		FilePath:    key,
		FileURL:     s.storage.URL(key),
		FileSize:    int64(len(req.File)),
		FileType:    req.ContentType,
		Status:      models.DocumentStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		s.logger.Error("failed to save document metadata", "error", err, "doc_id", docID)
		// Compensating action: do not leave an orphaned blob behind.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to clean up stored file", "error", delErr, "key", key)
		}
		return nil, utils.NewInternalError("Failed to save document")
	}

	task := &models.Task{
		ID:         utils.GenerateID(),
		DocumentID: docID,
		UserID:     req.UserID,
		TaskType:   models.TaskTypeDocumentAnalysis,
		Status:     models.TaskStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		// Accepted inconsistency: the document exists without a task.
		s.logger.Error("failed to create analysis task", "error", err, "doc_id", docID)
		task.ID = ""
	}

	s.logger.Info("document uploaded",
		"doc_id", docID,
		"user_id", req.UserID,
		"file_type", req.ContentType,
		"file_size", doc.FileSize)

	return &models.UploadResponse{DocumentID: docID, TaskID: task.ID}, nil
}

func (s *documentService) GetDocument(ctx context.Context, userID, id string) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil || doc.UserID != userID {
		return nil, utils.NewNotFoundError("Document not found")
	}

	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to list documents")
	}

	return docs, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, userID string, elevated bool, id, status string) error {
	if !models.ValidDocumentStatus(status) {
		return utils.NewBadRequestError(fmt.Sprintf("Invalid status '%s'", status))
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get document", "error", err, "id", id)
		return utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return utils.NewNotFoundError("Document not found")
	}
	if !elevated && doc.UserID != userID {
		return utils.NewNotFoundError("Document not found")
	}

	if err := s.docs.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("failed to update status", "error", err, "id", id)
		return utils.NewInternalError("Failed to update document")
	}

	return nil
}

func (s *documentService) GetTask(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get task", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve task")
	}
	if task == nil || task.UserID != userID {
		return nil, utils.NewNotFoundError("Task not found")
	}

	return task, nil
}
