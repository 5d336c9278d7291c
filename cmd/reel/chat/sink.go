package chatcmder

import (
	"fmt"
	"io"

	"github.com/papercomputeco/reel/pkg/cliui"
)

func userPrompt(styled bool) string {
	if !styled {
		return "you> "
	}
	return cliui.UserPromptStyle.Render("you> ")
}

func assistantPrompt(styled bool) string {
	if !styled {
		return "assistant> "
	}
	return cliui.AssistantPromptStyle.Render("assistant> ")
}

// terminalSink renders session updates to the terminal. Updates arrive as
// the full accumulated reply, so the sink prints only the unseen suffix to
// get token-by-token output.
type terminalSink struct {
	out      io.Writer
	errOut   io.Writer
	markdown bool
	styled   bool

	printed int
	full    string
}

func newTerminalSink(out, errOut io.Writer, markdown, styled bool) *terminalSink {
	return &terminalSink{
		out:      out,
		errOut:   errOut,
		markdown: markdown,
		styled:   styled,
	}
}

func (t *terminalSink) OnUserMessage(string) {}

func (t *terminalSink) OnStreamStart() {
	t.printed = 0
	t.full = ""
	fmt.Fprint(t.out, assistantPrompt(t.styled))
}

func (t *terminalSink) OnAssistantUpdate(fullText string) {
	t.full = fullText

	// Markdown mode holds tokens back and renders the finished reply once.
	if t.markdown {
		return
	}

	if t.printed < len(fullText) {
		fmt.Fprint(t.out, fullText[t.printed:])
		t.printed = len(fullText)
	}
}

func (t *terminalSink) OnError(msg string) {
	if t.styled {
		msg = cliui.ErrorStyle.Render(msg)
	}
	fmt.Fprintf(t.errOut, "  %s %s\n", cliui.FailMark, msg)
}

func (t *terminalSink) OnStreamEnd() {
	defer func() {
		t.printed = 0
		t.full = ""
	}()

	if !t.markdown {
		if t.printed > 0 {
			fmt.Fprintln(t.out)
		}
		return
	}

	if t.full == "" {
		return
	}

	rendered, err := cliui.RenderMarkdown(t.full)
	if err != nil {
		// Fall back to the raw text rather than losing the reply.
		rendered = t.full + "\n"
	}
	fmt.Fprint(t.out, rendered)
}
