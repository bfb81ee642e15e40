// Package server holds the HTTP server configuration.
//
// The main application entry point handles the server startup; this package only
// defines the configuration structure for server settings (listen port, API key,
// route base path).
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by cmd/start.go when wiring middleware and routes.
package server
