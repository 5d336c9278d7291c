package chatcmder

import (
	"bytes"
	"context"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reel/pkg/llm"
	"github.com/papercomputeco/reel/pkg/stream"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with expected properties", func() {
		cmd := NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
		Expect(cmd.Short).NotTo(BeEmpty())
	})

	It("registers the expected flags", func() {
		cmd := NewChatCmd()
		for _, name := range []string{"target", "agent", "markdown", "transcript", "log-file"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), "missing flag %q", name)
		}
	})

	It("uses registry shorthands for target and agent", func() {
		cmd := NewChatCmd()
		Expect(cmd.Flags().Lookup("target").Shorthand).To(Equal("t"))
		Expect(cmd.Flags().Lookup("agent").Shorthand).To(Equal("a"))
	})
})

var _ = Describe("terminalSink", func() {
	var (
		out    *bytes.Buffer
		errOut *bytes.Buffer
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
	})

	It("prints only the unseen suffix of each update", func() {
		sink := newTerminalSink(out, errOut, false, false)

		sink.OnStreamStart()
		sink.OnAssistantUpdate("Hel")
		sink.OnAssistantUpdate("Hello")
		sink.OnStreamEnd()

		Expect(out.String()).To(Equal("assistant> Hello\n"))
	})

	It("tolerates repeated identical updates", func() {
		sink := newTerminalSink(out, errOut, false, false)

		sink.OnStreamStart()
		sink.OnAssistantUpdate("Hi")
		sink.OnAssistantUpdate("Hi")
		sink.OnStreamEnd()

		Expect(out.String()).To(Equal("assistant> Hi\n"))
	})

	It("holds tokens back in markdown mode and renders once at the end", func() {
		sink := newTerminalSink(out, errOut, true, false)

		sink.OnStreamStart()
		sink.OnAssistantUpdate("# Title")
		afterUpdates := out.String()
		sink.OnStreamEnd()

		Expect(afterUpdates).To(Equal("assistant> "))
		Expect(out.String()).To(ContainSubstring("Title"))
	})

	It("writes errors to the error writer", func() {
		sink := newTerminalSink(out, errOut, false, false)

		sink.OnError("request failed: connection refused")

		Expect(errOut.String()).To(ContainSubstring("connection refused"))
		Expect(out.String()).To(BeEmpty())
	})

	It("resets between cycles", func() {
		sink := newTerminalSink(out, errOut, false, false)

		sink.OnStreamStart()
		sink.OnAssistantUpdate("first")
		sink.OnStreamEnd()

		sink.OnStreamStart()
		sink.OnAssistantUpdate("second")
		sink.OnStreamEnd()

		Expect(out.String()).To(Equal("assistant> first\nassistant> second\n"))
	})
})

// chatStubTransport returns a canned response for capture tests.
type chatStubTransport struct {
	resp *stream.Response
	err  error
}

func (t *chatStubTransport) Send(context.Context, *llm.ChatRequest) (*stream.Response, error) {
	return t.resp, t.err
}

var _ = Describe("captureTransport", func() {
	It("tees the response body into the capture writer", func() {
		raw := "data: {\"response\": \"hi\"}\n\ndata: [DONE]\n\n"
		inner := &chatStubTransport{resp: &stream.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(raw)),
		}}

		var captured bytes.Buffer
		transport := &captureTransport{inner: inner, capture: &captured}

		resp, err := transport.Send(context.Background(), &llm.ChatRequest{})
		Expect(err).NotTo(HaveOccurred())

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body.Close()).To(Succeed())

		Expect(string(body)).To(Equal(raw))
		Expect(captured.String()).To(Equal(raw))
	})

	It("passes transport errors through untouched", func() {
		inner := &chatStubTransport{err: io.ErrUnexpectedEOF}
		transport := &captureTransport{inner: inner, capture: &bytes.Buffer{}}

		_, err := transport.Send(context.Background(), &llm.ChatRequest{})
		Expect(err).To(MatchError(io.ErrUnexpectedEOF))
	})
})
