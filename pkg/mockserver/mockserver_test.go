package mockserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reel/pkg/llm"
	"github.com/papercomputeco/reel/pkg/logger"
	"github.com/papercomputeco/reel/pkg/sse"
	"github.com/papercomputeco/reel/pkg/stream"
)

// postCompletion sends a chat request through the fiber test harness and
// returns the response.
func postCompletion(server *Server, req llm.ChatRequest) *http.Response {
	body, err := json.Marshal(req)
	Expect(err).NotTo(HaveOccurred())

	httpReq := httptest.NewRequest(http.MethodPost, stream.CompletionPath, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(httpReq, -1)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

// framePayloads splits the full response body into SSE event payloads.
func framePayloads(resp *http.Response) []string {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())

	payloads, rest := sse.Split(body)
	if tail, ok := sse.Flush(rest); ok {
		payloads = append(payloads, tail)
	}
	return payloads
}

var _ = Describe("Server", func() {
	newServer := func(config Config) *Server {
		server, err := New(config, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return server
	}

	Describe("New", func() {
		It("rejects unknown schemas", func() {
			_, err := New(Config{Schema: "ndjson"}, logger.Nop())
			Expect(err).To(HaveOccurred())
		})

		It("defaults to the response schema", func() {
			server := newServer(Config{})
			Expect(server.schema()).To(Equal(SchemaResponse))
		})
	})

	Describe("completion endpoint", func() {
		It("streams a fixed reply as response-schema events", func() {
			server := newServer(Config{Reply: "Hello mock world", Schema: SchemaResponse})

			resp := postCompletion(server, llm.ChatRequest{
				Agent:    "default",
				Messages: []llm.Turn{llm.UserTurn("hi")},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))

			payloads := framePayloads(resp)
			Expect(payloads[len(payloads)-1]).To(Equal(stream.DoneSentinel))

			var reply string
			for _, p := range payloads[:len(payloads)-1] {
				var event struct {
					Response string `json:"response"`
				}
				Expect(json.Unmarshal([]byte(p), &event)).To(Succeed())
				reply += event.Response
			}
			Expect(reply).To(Equal("Hello mock world"))
		})

		It("streams choices-schema events when configured", func() {
			server := newServer(Config{Reply: "two words", Schema: SchemaChoices})

			resp := postCompletion(server, llm.ChatRequest{
				Messages: []llm.Turn{llm.UserTurn("hi")},
			})
			payloads := framePayloads(resp)
			Expect(payloads[len(payloads)-1]).To(Equal(stream.DoneSentinel))

			var reply string
			for _, p := range payloads[:len(payloads)-1] {
				var event struct {
					Choices []struct {
						Delta struct {
							Content string `json:"content"`
						} `json:"delta"`
					} `json:"choices"`
				}
				Expect(json.Unmarshal([]byte(p), &event)).To(Succeed())
				Expect(event.Choices).To(HaveLen(1))
				reply += event.Choices[0].Delta.Content
			}
			Expect(reply).To(Equal("two words"))
		})

		It("echoes the last user message when no reply is configured", func() {
			server := newServer(Config{})

			resp := postCompletion(server, llm.ChatRequest{
				Messages: []llm.Turn{
					llm.UserTurn("first"),
					llm.AssistantTurn("ack"),
					llm.UserTurn("second"),
				},
			})
			payloads := framePayloads(resp)

			var reply string
			for _, p := range payloads[:len(payloads)-1] {
				var event struct {
					Response string `json:"response"`
				}
				Expect(json.Unmarshal([]byte(p), &event)).To(Succeed())
				reply += event.Response
			}
			Expect(reply).To(Equal("You said: second"))
		})

		It("interleaves keep-alive comments that clients must discard", func() {
			server := newServer(Config{Reply: "a b c d e", KeepAlive: true})

			resp := postCompletion(server, llm.ChatRequest{
				Messages: []llm.Turn{llm.UserTurn("hi")},
			})

			// Comment frames never surface as payloads.
			payloads := framePayloads(resp)
			var reply string
			for _, p := range payloads[:len(payloads)-1] {
				var event struct {
					Response string `json:"response"`
				}
				Expect(json.Unmarshal([]byte(p), &event)).To(Succeed())
				reply += event.Response
			}
			Expect(reply).To(Equal("a b c d e"))
		})

		It("rejects malformed JSON bodies", func() {
			server := newServer(Config{})

			httpReq := httptest.NewRequest(http.MethodPost, stream.CompletionPath, bytes.NewReader([]byte("{not json")))
			resp, err := server.app.Test(httpReq, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			defer resp.Body.Close()
			var errResp llm.ErrorResponse
			Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
			Expect(errResp.Error).NotTo(BeEmpty())
		})

		It("rejects requests with no messages", func() {
			server := newServer(Config{})

			resp := postCompletion(server, llm.ChatRequest{Agent: "default"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ping endpoint", func() {
		It("responds with pong", func() {
			server := newServer(Config{})

			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("pong"))
		})
	})
})
