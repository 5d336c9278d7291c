// Package mockserver implements a local completion service that speaks the
// same SSE wire protocol reel chat consumes. It exists for demos and for
// exercising the client end-to-end without a real model behind it.
package mockserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/reel/pkg/llm"
	"github.com/papercomputeco/reel/pkg/stream"
)

// Payload schemas the mock service can emit.
const (
	// SchemaResponse emits {"response": "..."} event payloads.
	SchemaResponse = "response"

	// SchemaChoices emits OpenAI-style choices/delta/content payloads.
	SchemaChoices = "choices"
)

// Config holds the mock service settings.
type Config struct {
	// ListenAddr is the address to listen on (e.g. ":8080").
	ListenAddr string

	// Schema selects the event payload shape (SchemaResponse or SchemaChoices).
	Schema string

	// Reply is the fixed assistant reply to stream. When empty the service
	// echoes the last user message back.
	Reply string

	// ChunkDelay is the pause between event frames. Zero streams as fast
	// as the client can read.
	ChunkDelay time.Duration

	// KeepAlive interleaves comment frames between events, the way
	// long-running providers do to hold idle connections open.
	KeepAlive bool
}

// Server is the mock completion service.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// New creates a mock completion service. Returns an error when the
// configured schema is not one the service can emit.
func New(config Config, logger *slog.Logger) (*Server, error) {
	switch config.Schema {
	case "", SchemaResponse, SchemaChoices:
	default:
		return nil, fmt.Errorf("unknown schema %q", config.Schema)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post(stream.CompletionPath, s.handleCompletion)

	return s, nil
}

// Run starts the service on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock completion service",
		"listen", s.config.ListenAddr,
		"schema", s.schema(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the service using the provided listener.
// Useful for tests that need an OS-assigned port.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting mock completion service",
		"listen", listener.Addr().String(),
		"schema", s.schema(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the service.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) schema() string {
	if s.config.Schema == "" {
		return SchemaResponse
	}
	return s.config.Schema
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (s *Server) handleCompletion(c *fiber.Ctx) error {
	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Warn("rejecting malformed request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "messages must not be empty"})
	}

	reply := s.config.Reply
	if reply == "" {
		reply = echoReply(req.Messages)
	}

	s.logger.Debug("streaming reply",
		"agent", req.Agent,
		"turns", len(req.Messages),
		"reply_len", len(reply),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe + SetBodyStream gives per-chunk flushing with backpressure:
	// pw.Write blocks until fasthttp's chunked writer consumes the frame,
	// so each event reaches the socket as soon as it is written.
	pr, pw := io.Pipe()
	go s.streamReply(pw, reply)

	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamReply writes the reply as a sequence of SSE event frames followed
// by the [DONE] sentinel, then closes the pipe.
func (s *Server) streamReply(pw *io.PipeWriter, reply string) {
	defer pw.Close()

	for i, word := range strings.SplitAfter(reply, " ") {
		if word == "" {
			continue
		}

		if s.config.KeepAlive && i%3 == 1 {
			if _, err := fmt.Fprint(pw, ": keep-alive\n\n"); err != nil {
				return
			}
		}

		payload, err := s.encodeDelta(word)
		if err != nil {
			s.logger.Error("encoding delta", "error", err)
			return
		}
		if _, err := fmt.Fprintf(pw, "data: %s\n\n", payload); err != nil {
			// Client went away mid-stream.
			return
		}

		if s.config.ChunkDelay > 0 {
			time.Sleep(s.config.ChunkDelay)
		}
	}

	fmt.Fprintf(pw, "data: %s\n\n", stream.DoneSentinel)
}

func (s *Server) encodeDelta(content string) ([]byte, error) {
	switch s.schema() {
	case SchemaChoices:
		return json.Marshal(fiber.Map{
			"choices": []fiber.Map{
				{"delta": fiber.Map{"content": content}},
			},
		})
	default:
		return json.Marshal(fiber.Map{"response": content})
	}
}

// echoReply derives a reply from the most recent user turn.
func echoReply(messages []llm.Turn) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return "You said: " + messages[i].Content
		}
	}
	return "Hello from the mock completion service."
}
