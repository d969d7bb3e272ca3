package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rrsartgit/legalnexus/internal/auth"
	"github.com/rrsartgit/legalnexus/internal/middleware"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/services"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (auth.Session, error) {
	switch token {
	case "valid-token":
		return auth.Session{UserID: "user-1"}, nil
	case "service-token":
		return auth.Session{UserID: "svc-1", Scopes: []string{auth.ScopeService}}, nil
	}
	return auth.Session{}, errors.New("invalid token")
}

type memStorage struct {
	objects     map[string][]byte
	uploadCalls int
}

func (m *memStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.uploadCalls++
	m.objects[key] = data
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) ([]byte, error) {
	return m.objects[key], nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) URL(key string) string { return "http://storage.local/" + key }

type memDocRepo struct {
	docs map[string]*models.Document
}

func (m *memDocRepo) Create(_ context.Context, doc *models.Document) error {
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *memDocRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	return m.docs[id], nil
}

func (m *memDocRepo) ListByUser(_ context.Context, userID string) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range m.docs {
		if doc.UserID == userID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *memDocRepo) UpdateStatus(_ context.Context, id, status string) error {
	if doc, ok := m.docs[id]; ok {
		doc.Status = status
	}
	return nil
}

func (m *memDocRepo) SetExtractedText(_ context.Context, id, text string) error {
	if doc, ok := m.docs[id]; ok {
		doc.ExtractedText = &text
	}
	return nil
}

type memTaskRepo struct {
	tasks map[string]*models.Task
}

func (m *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *memTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	return m.tasks[id], nil
}

func (m *memTaskRepo) ClaimNextPending(_ context.Context, _ string) (*models.Task, error) {
	return nil, nil
}

func (m *memTaskRepo) MarkCompleted(_ context.Context, _ string) error { return nil }

func (m *memTaskRepo) MarkFailed(_ context.Context, _, _ string) error { return nil }

type testEnv struct {
	router  http.Handler
	storage *memStorage
	docs    *memDocRepo
	tasks   *memTaskRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := utils.NewLogger("error")
	env := &testEnv{
		storage: &memStorage{objects: map[string][]byte{}},
		docs:    &memDocRepo{docs: map[string]*models.Document{}},
		tasks:   &memTaskRepo{tasks: map[string]*models.Task{}},
	}

	svc := services.NewDocumentService(env.docs, env.tasks, env.storage, logger)
	handler := NewDocumentHandler(svc, logger)

	r := mux.NewRouter()
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.RequireAuth(fakeVerifier{}))
	protected.HandleFunc("/documents/upload", handler.UploadDocument).Methods(http.MethodPost)
	protected.HandleFunc("/documents", handler.ListDocuments).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}", handler.GetDocument).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}/status", handler.UpdateStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/tasks/{id}", handler.GetTask).Methods(http.MethodGet)

	env.router = r
	return env
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(content)
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, env *testEnv, token, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := doUpload(t, env, "", "umowa.pdf", []byte("%PDF-1.4"), nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "Unauthorized" {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
	if env.storage.uploadCalls != 0 {
		t.Errorf("storage must not be touched, got %d calls", env.storage.uploadCalls)
	}
}

func TestUploadMissingFile(t *testing.T) {
	env := newTestEnv(t)

	rec := doUpload(t, env, "valid-token", "", nil, map[string]string{"title": "Umowa"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "No file provided" {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
	if env.storage.uploadCalls != 0 {
		t.Errorf("storage must not be touched, got %d calls", env.storage.uploadCalls)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	rec := doUpload(t, env, "valid-token", "pismo.docx", []byte("PK"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.storage.uploadCalls != 0 {
		t.Errorf("storage must not be touched, got %d calls", env.storage.uploadCalls)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "duzy.pdf", []byte("%PDF-1.4"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer valid-token")
	req.ContentLength = 15 << 20 // client declares a 15MB payload

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.storage.uploadCalls != 0 {
		t.Errorf("storage must not be touched, got %d calls", env.storage.uploadCalls)
	}
}

func TestUploadAndFetchDocument(t *testing.T) {
	env := newTestEnv(t)

	jpeg := bytes.Repeat([]byte{0xFF}, 2<<20) // 2MB
	rec := doUpload(t, env, "valid-token", "skan.jpg", jpeg, map[string]string{"title": "Umowa"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.DocumentID == "" || resp.TaskID == "" {
		t.Fatalf("expected document and task ids, got %+v", resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+resp.DocumentID, nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	getRec := httptest.NewRecorder()
	env.router.ServeHTTP(getRec, req)

	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getRec.Code)
	}

	var doc models.Document
	if err := json.Unmarshal(getRec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	if doc.Status != models.DocumentStatusUploaded {
		t.Errorf("expected status uploaded, got %s", doc.Status)
	}
	if doc.FileType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", doc.FileType)
	}
	if doc.Name != "Umowa" {
		t.Errorf("expected title Umowa, got %s", doc.Name)
	}

	// The pending task is visible for polling.
	taskReq := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+resp.TaskID, nil)
	taskReq.Header.Set("Authorization", "Bearer valid-token")
	taskRec := httptest.NewRecorder()
	env.router.ServeHTTP(taskRec, taskReq)

	if taskRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for task fetch, got %d", taskRec.Code)
	}
	var task models.Task
	json.Unmarshal(taskRec.Body.Bytes(), &task)
	if task.Status != models.TaskStatusPending {
		t.Errorf("expected pending task, got %s", task.Status)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	env.docs.docs["doc-1"] = &models.Document{ID: "doc-1", UserID: "user-1", Status: models.DocumentStatusUploaded}

	cases := []struct {
		name   string
		token  string
		status string
		want   int
	}{
		{"valid transition", "valid-token", "submitted", http.StatusOK},
		{"invalid enum", "valid-token", "archived", http.StatusBadRequest},
		{"foreign user", "service-token", "completed", http.StatusOK}, // service scope bypasses owner check
		{"no session", "", "submitted", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, _ := json.Marshal(models.StatusUpdateRequest{Status: tc.status})
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/documents/doc-1/status", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			if tc.token != "" {
				req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tc.token))
			}

			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
