package chatcmder

import (
	"context"
	"io"

	"github.com/papercomputeco/reel/pkg/llm"
	"github.com/papercomputeco/reel/pkg/stream"
)

// captureTransport wraps a Transport so every byte of the response body is
// appended to the capture writer as the session consumes it. The raw SSE
// stream lands on disk exactly as it came off the wire.
type captureTransport struct {
	inner   stream.Transport
	capture io.Writer
}

func (t *captureTransport) Send(ctx context.Context, req *llm.ChatRequest) (*stream.Response, error) {
	resp, err := t.inner.Send(ctx, req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}

	resp.Body = &teeReadCloser{
		Reader: io.TeeReader(resp.Body, t.capture),
		closer: resp.Body,
	}
	return resp, nil
}

type teeReadCloser struct {
	io.Reader
	closer io.Closer
}

func (t *teeReadCloser) Close() error {
	return t.closer.Close()
}
