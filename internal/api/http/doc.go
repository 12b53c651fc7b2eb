// Package http implements the REST API.
//
// Routes:
//   - GET /, GET /health: service info and health
//   - /api/landscape/*: category catalog and assessment wizard sessions
//   - POST /api/upload: store a ticket export in the object store
//   - POST /api/analyze, /api/analyze/reference, /api/export/:format:
//     relays to the analysis backend
//   - POST /api/logs: batched frontend logs
//
// Every failure responds with {"error": string}.
package http
