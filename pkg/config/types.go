package config

// Config represents the persistent reel configuration stored as config.toml
// in the .reel/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Serve   ServeConfig  `toml:"serve"`
}

// ClientConfig holds settings for commands that connect to a completion
// service (reel chat). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
	Agent  string `toml:"agent,omitempty"`
}

// ServeConfig holds settings for the local mock completion service.
type ServeConfig struct {
	Listen string `toml:"listen,omitempty"`
	Schema string `toml:"schema,omitempty"`
}
