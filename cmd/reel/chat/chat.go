// Package chatcmder provides the chat command for interactive streaming
// chat against an SSE completion service.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/reel/pkg/cliui"
	"github.com/papercomputeco/reel/pkg/config"
	"github.com/papercomputeco/reel/pkg/logger"
	"github.com/papercomputeco/reel/pkg/stream"
)

type chatCommander struct {
	target     string
	agent      string
	markdown   bool
	transcript string
	logFile    string
	debug      bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session against an SSE completion service.

Each message replays the full conversation so far; the assistant's reply
streams to the terminal token by token as events arrive. The service is
expected to emit server-sent events terminated by a [DONE] sentinel.

Type your message and press Enter. /exit or Ctrl+D ends the session.

Examples:
  reel chat
  reel chat --target http://localhost:8080 --agent default
  reel chat --markdown
  reel chat --transcript stream.log`

const chatShortDesc string = "Interactive streaming chat"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.Target
			}

			if !cmd.Flags().Changed("agent") {
				cmder.agent = cfg.Client.Agent
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, config.Flags, config.FlagAgent, &cmder.agent)
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render assistant replies as markdown")
	cmd.Flags().StringVar(&cmder.transcript, "transcript", "", "Append the raw SSE byte stream to this file")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Mirror logs as JSON to this file")

	return cmd
}

func (c *chatCommander) run() error {
	log, closeLog, err := c.buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	transport, closeTranscript, err := c.buildTransport()
	if err != nil {
		return err
	}
	defer closeTranscript()

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	sink := newTerminalSink(os.Stdout, os.Stderr, c.markdown, styled)

	session, err := stream.NewSession(&stream.Config{
		Agent:     c.agent,
		Transport: transport,
		Sink:      sink,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.DimStyle.Render("Target:"),
		c.target,
	)
	fmt.Printf("  %s %s\n\n",
		cliui.DimStyle.Render("Agent:"),
		c.agent,
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt(styled))
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		start := time.Now()
		err := session.Submit(context.Background(), input)
		if err != nil {
			// The sink already displayed transport failures; the loop
			// continues so the user can retry or rephrase.
			continue
		}

		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(time.Since(start)))))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// buildLogger assembles the session logger: pretty output on stderr, plus a
// JSON mirror when --log-file is set. The returned closer flushes the file.
func (c *chatCommander) buildLogger() (*slog.Logger, func(), error) {
	base := logger.New(
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile == "" {
		return base, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLogger := logger.New(
		logger.WithJSON(true),
		logger.WithDebug(c.debug),
		logger.WithWriter(f),
	)

	return logger.Multi(base, fileLogger), func() { _ = f.Close() }, nil
}

// buildTransport returns the HTTP transport, optionally wrapped so the raw
// SSE byte stream is appended to the transcript file as it is consumed.
func (c *chatCommander) buildTransport() (stream.Transport, func(), error) {
	transport := stream.Transport(stream.NewHTTPTransport(c.target))

	if c.transcript == "" {
		return transport, func() {}, nil
	}

	f, err := os.OpenFile(c.transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening transcript file: %w", err)
	}

	return &captureTransport{inner: transport, capture: f}, func() { _ = f.Close() }, nil
}
