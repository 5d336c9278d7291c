// Package sse provides incremental framing of SSE (Server-Sent Events)
// streams for the reel client. It is designed for callers that receive the
// stream as arbitrarily fragmented network chunks: feed the accumulated
// buffer to Split, consume the complete events it yields, and carry the
// returned remainder into the next call.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"bytes"
	"strings"
)

const dataPrefix = "data:"

// eventSep is the blank-line separator terminating an event block.
var eventSep = []byte("\n\n")

// Split extracts every complete SSE event from buf, returning the event
// data payloads in stream order plus the unconsumed remainder.
//
// An event is a block of lines terminated by a blank line. Within a block
// only "data:" lines contribute; their values are concatenated with "\n"
// per the SSE spec. Blocks carrying no data line (comments, keep-alive
// frames) yield no payload. Carriage returns are stripped up front so CRLF
// framing cannot corrupt boundary detection.
//
// The remainder is everything after the last blank-line separator. It may
// hold a partial event block, or even a partial multi-byte character cut at
// a chunk boundary; the caller must pass it back as the prefix of the next
// call. Split never yields a partial block and, given the remainder
// threading above, never yields the same event twice.
//
// Split keeps no state of its own: the same buffer always produces the same
// payloads and remainder.
func Split(buf []byte) (payloads []string, rest []byte) {
	rest = normalize(buf)
	for {
		idx := bytes.Index(rest, eventSep)
		if idx < 0 {
			return payloads, rest
		}

		block := rest[:idx]
		rest = rest[idx+len(eventSep):]

		if payload, ok := parseBlock(string(block)); ok {
			payloads = append(payloads, payload)
		}
	}
}

// Flush treats rest as a final, implicitly terminated event block. Streams
// that end without a trailing blank line still yield their last event this
// way. Reports ok=false when the leftover carries no data line.
func Flush(rest []byte) (payload string, ok bool) {
	if len(rest) == 0 {
		return "", false
	}
	return parseBlock(string(normalize(rest)))
}

// normalize strips carriage returns. Boundary detection is newline-only, and
// \r never appears inside a multi-byte UTF-8 sequence, so this is safe on
// buffers cut at arbitrary byte offsets.
func normalize(buf []byte) []byte {
	if !bytes.ContainsRune(buf, '\r') {
		return buf
	}
	return bytes.ReplaceAll(buf, []byte{'\r'}, nil)
}

// parseBlock filters one raw event block down to its data payload: keep
// "data:" lines, strip the prefix and a single optional leading space, and
// join the values with "\n". Reports ok=false for blocks with no data line.
func parseBlock(block string) (string, bool) {
	var b strings.Builder
	found := false

	for line := range strings.SplitSeq(block, "\n") {
		value, ok := strings.CutPrefix(line, dataPrefix)
		if !ok {
			continue
		}

		// A single leading space after the colon is framing, not payload.
		value = strings.TrimPrefix(value, " ")

		if found {
			b.WriteString("\n")
		}
		b.WriteString(value)
		found = true
	}

	return b.String(), found
}
