// Package utils holds small helpers shared across aura packages.
package utils

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "unknown"
)
