package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/services"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

type AdviceHandler struct {
	service services.AdviceService
	logger  *utils.Logger
}

func NewAdviceHandler(service services.AdviceService, logger *utils.Logger) *AdviceHandler {
	return &AdviceHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdviceHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Question is required"))
		return
	}

	resp, err := h.service.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}
