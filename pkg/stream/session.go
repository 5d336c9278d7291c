// Package stream drives one request/response cycle against a completion
// service: it posts the conversation, consumes the SSE byte stream chunk by
// chunk, and pushes incremental content updates to a display sink.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/reel/pkg/llm"
	"github.com/papercomputeco/reel/pkg/sse"
	"github.com/papercomputeco/reel/pkg/utils"
)

// DoneSentinel is the literal, non-JSON event payload signaling graceful
// end of stream. Events after it are never processed.
const DoneSentinel = "[DONE]"

const (
	// readChunkSize bounds a single body read. Chunks carry no alignment
	// guarantee; framing tolerates any fragmentation.
	readChunkSize = 32 * 1024

	// maxDiagnosticBytes bounds how much of an error response body is
	// carried into a TransportError.
	maxDiagnosticBytes = 8 * 1024
)

// Config configures a Session.
type Config struct {
	// Agent is an opaque routing value forwarded on every request.
	Agent string

	// Transport dispatches requests. Required.
	Transport Transport

	// Sink receives display updates. Defaults to NopSink.
	Sink Sink

	// Logger receives cycle lifecycle events at debug level.
	// Defaults to a discard logger.
	Logger *slog.Logger

	// Extractors override the payload schemas recognized mid-stream.
	// Defaults to DefaultExtractors.
	Extractors []Extractor
}

// Session owns one conversation: the ordered history, the in-flight state
// gate, and the buffers of the active cycle. Lifecycle is create, any
// number of Submit cycles, discard.
//
// A session runs one cycle at a time and is not safe for concurrent use;
// overlapping submissions are rejected, not queued.
type Session struct {
	agent      string
	transport  Transport
	sink       Sink
	logger     *slog.Logger
	extractors []Extractor

	state   State
	history []llm.Turn

	// Owned exclusively by the active cycle, reset on each submission.
	pending []byte
	reply   strings.Builder
}

// NewSession creates a Session from cfg.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil || cfg.Transport == nil {
		return nil, errors.New("transport is required")
	}

	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	extractors := cfg.Extractors
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}

	return &Session{
		agent:      cfg.Agent,
		transport:  cfg.Transport,
		sink:       sink,
		logger:     logger,
		extractors: extractors,
	}, nil
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// History returns a copy of the conversation so far.
func (s *Session) History() []llm.Turn {
	out := make([]llm.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Submit runs one full request/response cycle for input.
//
// Empty or whitespace-only input returns ErrEmptyInput and a submission
// while a cycle is active returns ErrBusy; both rejections leave history
// and state untouched and never reach the sink. Transport failures surface
// as a *TransportError through both the return value and Sink.OnError.
// Whatever path the cycle takes, the session re-enters StateIdle and the
// sink receives OnStreamEnd.
func (s *Session) Submit(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyInput
	}
	if s.state != StateIdle {
		return ErrBusy
	}

	s.state = StateSending
	s.pending = nil
	s.reply.Reset()

	log := s.logger.With("cycle_id", uuid.NewString())

	defer func() {
		s.state = StateIdle
		s.sink.OnStreamEnd()
	}()

	// History gains the user turn before transmission; the request replays
	// the full ordered conversation.
	s.history = append(s.history, llm.UserTurn(input))
	s.sink.OnUserMessage(input)

	log.Debug("dispatching chat request",
		"agent", s.agent,
		"message_count", len(s.history),
	)

	resp, err := s.transport.Send(ctx, &llm.ChatRequest{
		Agent:    s.agent,
		Messages: s.history,
	})
	if err != nil {
		return s.fail(log, &TransportError{Err: err})
	}
	if resp == nil || resp.Body == nil {
		return s.fail(log, &TransportError{Err: ErrMissingBody})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))
		return s.fail(log, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(diag)),
		})
	}

	s.state = StateStreaming
	s.sink.OnStreamStart()

	if err := s.consume(log, resp.Body); err != nil {
		return s.fail(log, &TransportError{Err: err})
	}

	// Only a cycle that produced text records an assistant turn.
	if text := s.reply.String(); text != "" {
		s.history = append(s.history, llm.AssistantTurn(text))
	}

	log.Debug("cycle complete", "reply_len", s.reply.Len())
	return nil
}

// fail reports a transport failure: one user-visible error message, history
// left intact up to the last successful turn.
func (s *Session) fail(log *slog.Logger, terr *TransportError) error {
	s.state = StateError
	log.Debug("cycle failed", "error", terr.Error())
	s.sink.OnError(terr.Error())
	return terr
}

// consume drains the response body chunk by chunk, framing complete SSE
// events out of the pending buffer and applying them in order. It returns
// early, without error, once the termination sentinel arrives.
//
// The pending buffer holds raw bytes, so a multi-byte character split
// across chunk boundaries simply rides in the remainder until its trailing
// bytes arrive; text is only materialized from complete event blocks.
func (s *Session) consume(log *slog.Logger, body io.Reader) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			s.pending = append(s.pending, buf[:n]...)

			var payloads []string
			payloads, s.pending = sse.Split(s.pending)
			if s.apply(log, payloads) {
				return nil
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			break
		}
	}

	// A trailing event without a final blank line still counts: treat the
	// leftover buffer as an implicitly terminated block.
	if payload, ok := sse.Flush(s.pending); ok {
		s.apply(log, []string{payload})
	}
	s.pending = nil

	return nil
}

// apply processes framed event payloads in order, reporting whether the
// termination sentinel was seen. Anything framed after the sentinel is
// discarded unprocessed.
func (s *Session) apply(log *slog.Logger, payloads []string) bool {
	for _, payload := range payloads {
		if payload == DoneSentinel {
			log.Debug("stream terminated by sentinel")
			s.pending = nil
			return true
		}

		delta, ok := extractDelta(s.extractors, payload)
		if !ok {
			// Keep-alive frames and unrecognized payloads are expected
			// mid-stream; they never abort the cycle.
			log.Debug("skipping event without content",
				"payload", utils.Truncate(payload, 64),
			)
			continue
		}

		s.reply.WriteString(delta)
		s.sink.OnAssistantUpdate(s.reply.String())
	}
	return false
}
