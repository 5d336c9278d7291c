package utils

// Build-time metadata, injected via -ldflags.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
