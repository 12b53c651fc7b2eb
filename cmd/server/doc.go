// Package main is the entry point for the DWPNxt intake service.
//
// The service backs the DWPNxt ticket analytics frontend:
//
//	Frontend (browser) → Go service → Analysis backend (ticket analytics)
//	                               → Object store (uploaded exports)
//
// The server provides:
//   - Landscape assessment wizard sessions over a fixed tool catalog
//   - Upload relay for CSV and Excel ticket exports
//   - Analyze and export relays to the analysis backend
//   - Prometheus metrics, request tracing and rate limiting
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server --port 3000 --backend http://analysis:8000
//
//	# Development mode (colored logs, debug level)
//	./server --dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
