/*
Package analyze relays ticket exports to the external analysis backend.

The relay never interprets the analysis. A 2xx JSON body is returned
byte-for-byte; a non-2xx response becomes an *UpstreamError carrying the
backend's status and body so the API can surface it verbatim. Requests are
not retried. A circuit breaker in the outbound client fails fast while the
backend is down.

Backend contract:

	POST /api/analyze        multipart "file" -> AnalysisResult JSON
	POST /api/export/xlsx    multipart "file" -> workbook attachment
	POST /api/export/pdf     multipart "file" -> PDF attachment
*/
package analyze
