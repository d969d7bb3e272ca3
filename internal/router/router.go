package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rrsartgit/legalnexus/internal/auth"
	"github.com/rrsartgit/legalnexus/internal/handlers"
	"github.com/rrsartgit/legalnexus/internal/middleware"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

type Deps struct {
	Documents *handlers.DocumentHandler
	Advice    *handlers.AdviceHandler
	Auth      *handlers.AuthHandler
	Verifier  auth.TokenVerifier
	Logger    *utils.Logger
}

func New(d Deps) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(d.Logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Auth endpoints
	api.HandleFunc("/auth/signup", d.Auth.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", d.Auth.Login).Methods(http.MethodPost)

	// Legal advice
	api.HandleFunc("/advice", d.Advice.Ask).Methods(http.MethodPost)

	// Document endpoints require a session
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.RequireAuth(d.Verifier))

	protected.HandleFunc("/documents/upload", d.Documents.UploadDocument).Methods(http.MethodPost)
	protected.HandleFunc("/documents", d.Documents.ListDocuments).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}", d.Documents.GetDocument).Methods(http.MethodGet)
	protected.HandleFunc("/documents/{id}/status", d.Documents.UpdateStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/tasks/{id}", d.Documents.GetTask).Methods(http.MethodGet)

	return r
}
