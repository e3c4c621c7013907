// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this
// package defines the configuration structure for server settings so that
// core/config can embed it alongside the other partial configs.
package server
