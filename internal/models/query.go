package models

// ValidationError marks a request the client must correct, as opposed to a
// provider or storage fault.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Message is one turn of a conversation ("user" or "assistant").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is a question for the assistant, with optional prior turns.
type QueryRequest struct {
	Query               string    `json:"query"`
	ConversationHistory []Message `json:"conversation_history,omitempty"`
	// TopK overrides the configured number of candidates to retrieve.
	TopK int `json:"top_k,omitempty"`
}

// Validate ensures the request has a query and normalizes TopK.
func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return &ValidationError{Reason: "query cannot be empty"}
	}
	if q.TopK < 0 {
		q.TopK = 0
	}
	if q.TopK > 20 {
		q.TopK = 20
	}
	return nil
}

// QueryResponse is the assistant's answer plus the document texts it drew from.
// Sources is empty (not null) when the answer is the insufficient-information reply.
type QueryResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}
