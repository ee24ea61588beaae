package query

// Request is the body of both search operations.
type Request struct {
	Query string `json:"query"`
}

// Response carries the best document's text for a basic search, or the synthesized answer.
type Response struct {
	Message    string  `json:"message"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type Health struct {
	Status           string `json:"status"`
	Documents        int    `json:"documents"`
	Dimensions       int    `json:"dimensions"`
	EmbeddingModel   string `json:"embedding_model"`
	SynthesisEnabled bool   `json:"synthesis_enabled"`
}
