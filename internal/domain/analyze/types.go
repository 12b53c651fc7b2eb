package analyze

import (
	"errors"
	"fmt"
	"io"
)

// DefaultFilename is used when the incoming file has no name
const DefaultFilename = "upload.csv"

var (
	ErrNoFile            = errors.New("no file uploaded")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrNothingToAnalyze  = errors.New("no file reference given")
	ErrSourceNotAllowed  = errors.New("file source is not allowed")
	ErrSourceUnavailable = errors.New("file source could not be read")
	ErrInvalidResponse   = errors.New("analysis backend returned invalid JSON")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInProgress        = errors.New("analysis already in progress")
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportFilenames = map[string]string{
	FormatXLSX: "dwpnxt_analysis.xlsx",
	FormatPDF:  "dwpnxt_summary.pdf",
}

var exportContentTypes = map[string]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

// File is a file to forward to the backend
type File struct {
	Session     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UpstreamError is a non-2xx response from the backend
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis backend returned status %d", e.StatusCode)
}

// Attachment is a binary export passed through from the backend
type Attachment struct {
	ContentType string
	Disposition string
	Body        []byte
}

// AnalysisResult is the backend's response shape. The relay only decodes it
// for logging; clients receive the original bytes.
type AnalysisResult struct {
	Summary struct {
		OverallSentiment  string   `json:"overallSentiment"`
		TotalTickets      int      `json:"totalTickets"`
		AvgResolutionTime float64  `json:"avgResolutionTime"`
		SLABreaches       int      `json:"slaBreaches"`
		KeyThemes         []string `json:"keyThemes"`
		PriorityActions   []string `json:"priorityActions"`
	} `json:"summary"`
	Trends []struct {
		Month   string `json:"month"`
		Tickets int    `json:"tickets"`
	} `json:"trends"`
	Categories []struct {
		Driver       string  `json:"Driver"`
		Tickets      int     `json:"Tickets"`
		MedianAHT    float64 `json:"Median_AHT"`
		SLABreachPct float64 `json:"SLA_Breach_%"`
	} `json:"categories"`
}
