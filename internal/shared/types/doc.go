// Package types defines the request and response bodies of the HTTP API.
//
// Request Types:
//   - CreateSessionRequest: mount or resume a wizard
//   - ToggleToolRequest, CustomToolRequest: editor actions
//   - UILogStreamRequest: batched browser logs
//
// Response Types:
//   - ErrorResponse: every failure, {"error": string}
//   - EmptyAnalysisResponse: reference analysis with nothing to analyze
//   - ServiceInfo: GET /
package types
