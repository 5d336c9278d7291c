package stream

import "encoding/json"

// Extractor attempts to pull a content delta out of one parsed event
// payload. Extractors are tried in order; the first non-empty result wins.
// A payload no extractor recognizes produces no delta and no error.
type Extractor func(payload []byte) (string, bool)

// DefaultExtractors resolve the two wire schemas the client understands:
// the direct {"response": "..."} field first, then the chat-completion
// style {"choices":[{"delta":{"content":"..."}}]} shape.
func DefaultExtractors() []Extractor {
	return []Extractor{ExtractResponse, ExtractChoiceDelta}
}

// ExtractResponse handles {"response": "..."} payloads.
func ExtractResponse(payload []byte) (string, bool) {
	var body struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}
	return body.Response, body.Response != ""
}

// ExtractChoiceDelta handles OpenAI-style streaming chunks, reading
// choices[0].delta.content.
func ExtractChoiceDelta(payload []byte) (string, bool) {
	var body struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}
	if len(body.Choices) == 0 {
		return "", false
	}

	content := body.Choices[0].Delta.Content
	return content, content != ""
}

// extractDelta runs the extractor chain over one event payload.
func extractDelta(extractors []Extractor, payload string) (string, bool) {
	raw := []byte(payload)
	for _, extract := range extractors {
		if delta, ok := extract(raw); ok {
			return delta, true
		}
	}
	return "", false
}
