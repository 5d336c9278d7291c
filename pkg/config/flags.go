package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands.
type Flag struct {
	// Name is the long flag name (e.g. "target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "t"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagTarget = "target"
	FlagAgent  = "agent"
	FlagListen = "listen"
	FlagSchema = "schema"
)

// Flags is the flag registry shared by the reel commands.
var Flags = FlagSet{
	FlagTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "client.target",
		Description: "Completion service URL",
	},
	FlagAgent: {
		Name:        "agent",
		Shorthand:   "a",
		ViperKey:    "client.agent",
		Description: "Opaque agent routing value sent with every request",
	},
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "serve.listen",
		Description: "Address for the mock service to listen on",
	},
	FlagSchema: {
		Name:        "schema",
		ViperKey:    "serve.schema",
		Description: "Event payload schema emitted by the mock service (response, choices)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using
// definitions from the given FlagSet. Call this in PreRunE after InitViper
// to connect flags to the viper precedence chain
// (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}
