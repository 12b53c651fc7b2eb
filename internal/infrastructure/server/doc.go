// Package server assembles the service: configuration, storage, object
// store, relays, middleware and routes. It also runs the idle-session
// janitor and shuts the HTTP server down gracefully.
package server
