// Package api provides the HTTP API server for the aura journaling backend.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string
}
