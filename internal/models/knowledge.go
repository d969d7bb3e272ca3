package models

// KnowledgeItem is one entry of the static legal knowledge base. Entries are
// loaded once at first use and never mutated for the process lifetime.
type KnowledgeItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Source identifies a knowledge-base entry cited in an answer.
type Source struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RetrievalResult is the per-request output of the retriever: the concatenated
// text of the best-matching entries plus their citation metadata.
type RetrievalResult struct {
	Context string   `json:"context"`
	Sources []Source `json:"sources"`
}

type AdviceRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type AdviceResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
