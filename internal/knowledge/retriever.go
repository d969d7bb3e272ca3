package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/rrsartgit/legalnexus/internal/llm"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

// DefaultTopK bounds the number of returned fragments when the caller does
// not ask for a specific count.
const DefaultTopK = 4

// Retriever ranks a static knowledge base against a question and returns the
// best-matching entries as grounding context plus citations.
//
// The knowledge base and its embeddings are loaded once on first use and kept
// for the process lifetime; refreshing the corpus requires a restart. Query
// embeddings are computed fresh on every call.
type Retriever struct {
	path     string
	embedder llm.EmbeddingProvider
	logger   *utils.Logger

	mu      sync.Mutex
	loaded  bool
	items   []models.KnowledgeItem
	vectors [][]float32
}

func NewRetriever(path string, embedder llm.EmbeddingProvider, logger *utils.Logger) *Retriever {
	return &Retriever{
		path:     path,
		embedder: embedder,
		logger:   logger,
	}
}

// RetrieveContext embeds the question, ranks all knowledge entries by cosine
// similarity and returns the topK best. topK <= 0 falls back to DefaultTopK;
// topK beyond the knowledge-base size returns every entry.
func (r *Retriever) RetrieveContext(ctx context.Context, question string, topK int) (*models.RetrievalResult, error) {
	if question == "" {
		return nil, utils.NewBadRequestError("Question is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	if len(r.items) == 0 {
		return &models.RetrievalResult{Sources: []models.Source{}}, nil
	}

	queryVecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	queryVec := queryVecs[0]

	type scored struct {
		index int
		score float64
	}

	ranked := make([]scored, len(r.items))
	for i, vec := range r.vectors {
		ranked[i] = scored{index: i, score: cosine(queryVec, vec)}
	}
	// Stable sort keeps knowledge-base order on equal similarity.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if topK > len(ranked) {
		topK = len(ranked)
	}

	result := &models.RetrievalResult{Sources: make([]models.Source, 0, topK)}
	for i := 0; i < topK; i++ {
		item := r.items[ranked[i].index]
		if i > 0 {
			result.Context += "\n\n"
		}
		result.Context += fmt.Sprintf("Źródło: %s\n%s", item.Title, item.Content)
		result.Sources = append(result.Sources, models.Source{ID: item.ID, Title: item.Title})
	}

	return result, nil
}

// ensureLoaded reads the knowledge base and embeds every entry exactly once.
// A failed load is not cached, so the next request retries.
func (r *Retriever) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read knowledge base: %w", err)
	}

	var items []models.KnowledgeItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse knowledge base: %w", err)
	}

	var vectors [][]float32
	if len(items) > 0 {
		texts := make([]string, len(items))
		for i, item := range items {
			texts[i] = item.Title + "\n" + item.Content
		}

		vectors, err = r.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed knowledge base: %w", err)
		}
		if len(vectors) != len(items) {
			return fmt.Errorf("expected %d knowledge vectors, got %d", len(items), len(vectors))
		}
	}

	r.items = items
	r.vectors = vectors
	r.loaded = true

	r.logger.Info("knowledge base loaded", "entries", len(items))
	return nil
}

// cosine is the dot product of a and b over the product of their norms.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
