// Package reelcmder
package reelcmder

import (
	chatcmder "github.com/papercomputeco/reel/cmd/reel/chat"
	servecmder "github.com/papercomputeco/reel/cmd/reel/serve"
	versioncmder "github.com/papercomputeco/reel/cmd/version"
	"github.com/spf13/cobra"
)

const reelLongDesc string = `Reel is an interactive streaming chat client for SSE completion services.

Start chatting with:
  reel chat                  Connect to the configured completion service
  reel serve                 Run a local mock completion service`

const reelShortDesc string = "Reel - Streaming Chat Client"

func NewReelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reel",
		Short: reelShortDesc,
		Long:  reelLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .reel config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
