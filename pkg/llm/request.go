package llm

// ChatRequest is the outbound POST body for a completion request.
//
// Agent is an opaque routing value: the client forwards it untouched and
// never interprets it. Messages carries the full ordered conversation
// history, oldest first.
type ChatRequest struct {
	Agent    string `json:"agent"`
	Messages []Turn `json:"messages"`
}

// ErrorResponse is the JSON error body returned by services speaking this
// wire contract.
type ErrorResponse struct {
	Error string `json:"error"`
}
