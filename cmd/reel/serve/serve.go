// Package servecmder provides the serve command for running the local mock
// completion service.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reel/pkg/config"
	"github.com/papercomputeco/reel/pkg/logger"
	"github.com/papercomputeco/reel/pkg/mockserver"
)

type ServeCommander struct {
	listen     string
	schema     string
	reply      string
	chunkDelay time.Duration
	keepAlive  bool
	debug      bool

	logger *slog.Logger
}

const serveLongDesc string = `Run a local mock completion service.

The service speaks the same SSE wire protocol reel chat consumes: each
reply streams as data frames followed by a [DONE] sentinel. Useful for
demos and for exercising the client without a real model behind it.

Examples:
  reel serve
  reel serve --listen :9090 --schema choices
  reel serve --reply "A fixed reply." --chunk-delay 100ms --keep-alive`

const serveShortDesc string = "Run a mock completion service"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListen,
				config.FlagSchema,
			})

			cmder.listen = v.GetString("serve.listen")
			cmder.schema = v.GetString("serve.schema")
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

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSchema, &cmder.schema)
	cmd.Flags().StringVar(&cmder.reply, "reply", "", "Fixed reply to stream (default: echo the user message)")
	cmd.Flags().DurationVar(&cmder.chunkDelay, "chunk-delay", 0, "Pause between event frames")
	cmd.Flags().BoolVar(&cmder.keepAlive, "keep-alive", false, "Interleave comment frames between events")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
	)

	server, err := mockserver.New(mockserver.Config{
		ListenAddr: c.listen,
		Schema:     c.schema,
		Reply:      c.reply,
		ChunkDelay: c.chunkDelay,
		KeepAlive:  c.keepAlive,
	}, c.logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		c.logger.Info("shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
