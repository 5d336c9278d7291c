package config

const (
	defaultClientTarget = "http://localhost:8080"
	defaultClientAgent  = "default"

	defaultServeListen = ":8080"
	defaultServeSchema = "response"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Target: defaultClientTarget,
			Agent:  defaultClientAgent,
		},
		Serve: ServeConfig{
			Listen: defaultServeListen,
			Schema: defaultServeSchema,
		},
	}
}
