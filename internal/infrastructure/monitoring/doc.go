/*
Package monitoring collects Prometheus metrics for the intake service.

# Overview

Every Metrics value owns its registry, so tests and multiple servers in one
process never collide on registration.

# Metrics

- HTTP requests by route template, method and status (latency, size)
- Uploads by result and accepted upload size
- Analysis relays by result and backend latency
- Export relays by format and result
- Wizard transitions by action, mounted sessions, final submissions
- Uptime plus Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "analyze")
	body, err := relay.Analyze(ctx, file)
	timer.Stop(monitoring.ResultOK)
*/
package monitoring
