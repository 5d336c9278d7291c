package stream

// Sink receives display updates from a Session. Implementations own all
// presentation; the session never renders anything itself.
type Sink interface {
	// OnUserMessage is called once per cycle with the submitted input,
	// before the request is dispatched.
	OnUserMessage(text string)

	// OnStreamStart signals that the response handshake succeeded and
	// content is about to stream.
	OnStreamStart()

	// OnAssistantUpdate is called after every content delta with the full
	// accumulated response text. Last write wins; this is a full replace,
	// not an append diff.
	OnAssistantUpdate(fullText string)

	// OnError reports a transport failure as a single user-visible message.
	OnError(msg string)

	// OnStreamEnd signals the end of a cycle. It fires on every path out of
	// a cycle, success or failure.
	OnStreamEnd()
}

// NopSink discards all updates.
type NopSink struct{}

func (NopSink) OnUserMessage(string)     {}
func (NopSink) OnStreamStart()           {}
func (NopSink) OnAssistantUpdate(string) {}
func (NopSink) OnError(string)           {}
func (NopSink) OnStreamEnd()             {}
