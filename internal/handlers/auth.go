package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/rrsartgit/legalnexus/internal/auth"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/repository"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

type AuthHandler struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *utils.Logger
}

func NewAuthHandler(users repository.UserRepository, secret []byte, tokenTTL time.Duration, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, h.logger, utils.NewBadRequestError("Valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		respondError(w, h.logger, utils.NewBadRequestError("Password must be at least 8 characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to create account"))
		return
	}

	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, h.logger, utils.NewConflictError("Email already exists"))
			return
		}
		h.logger.Error("failed to create user", "error", err)
		respondError(w, h.logger, utils.NewInternalError("Failed to create account"))
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]string{"id": user.ID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		respondError(w, h.logger, utils.NewInternalError("Login failed"))
		return
	}
	if user == nil {
		respondError(w, h.logger, utils.NewUnauthorizedError("Invalid credentials"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, h.logger, utils.NewUnauthorizedError("Invalid credentials"))
		return
	}

	signed, err := auth.SignToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Login failed"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Also returned in the body for Bearer flows.
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"token": signed})
}
