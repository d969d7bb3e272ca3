package services

import (
	"context"

	"github.com/rrsartgit/legalnexus/internal/knowledge"
	"github.com/rrsartgit/legalnexus/internal/llm"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

const adviceSystemPrompt = `Jesteś asystentem prawnym serwisu LegalNexus. Odpowiadasz po polsku na pytania prawne.
Odpowiadaj WYŁĄCZNIE na podstawie poniższej bazy wiedzy. Jeśli baza wiedzy nie zawiera odpowiedzi, powiedz, że nie możesz pomóc i zalecaj kontakt z prawnikiem.
Na końcu odpowiedzi wymień źródła, z których skorzystałeś.`

type AdviceService interface {
	Answer(ctx context.Context, question string, topK int) (*models.AdviceResponse, error)
}

type adviceService struct {
	retriever *knowledge.Retriever
	generator llm.GenerationProvider
	logger    *utils.Logger
}

func NewAdviceService(retriever *knowledge.Retriever, generator llm.GenerationProvider, logger *utils.Logger) AdviceService {
	return &adviceService{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Answer grounds the question in the knowledge base and asks the generation
// provider for an answer restricted to that context.
func (s *adviceService) Answer(ctx context.Context, question string, topK int) (*models.AdviceResponse, error) {
	retrieval, err := s.retriever.RetrieveContext(ctx, question, topK)
	if err != nil {
		if _, ok := err.(*utils.AppError); ok {
			return nil, err
		}
		s.logger.Error("retrieval failed", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve context")
	}

	prompt := "Baza wiedzy:\n\n" + retrieval.Context + "\n\nPytanie: " + question

	answer, err := s.generator.Complete(ctx, adviceSystemPrompt, prompt)
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		return nil, utils.NewInternalError("Failed to generate answer")
	}

	return &models.AdviceResponse{Answer: answer, Sources: retrieval.Sources}, nil
}
