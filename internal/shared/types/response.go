package types

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// EmptyAnalysisResponse is returned when there is nothing to analyze
type EmptyAnalysisResponse struct {
	Status string `json:"status"`
}

// ServiceInfo is the body of GET /
type ServiceInfo struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
