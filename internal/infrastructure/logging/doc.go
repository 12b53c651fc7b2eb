// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output (LOG_DEV=true)
//
// Components receive a named child logger so every entry carries its
// subsystem:
//
//	logger := logging.NewDefault()
//	uploads := logger.Component("upload")
//	uploads.Info("File uploaded", zap.String("url", obj.URL))
//
// The level can be changed at runtime with SetLevel.
package logging
