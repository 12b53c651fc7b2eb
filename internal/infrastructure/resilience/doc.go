/*
Package resilience guards calls to the analysis backend and the blob store.

# Circuit breaker

Breaker is a three-state circuit breaker (Closed, Open, Half-Open) that only
counts transport failures. An upstream that answers, even with a 5xx, is
reachable and its answer goes back to the caller; the breaker only fails fast
once the analysis backend stops answering at all, so requests do not queue up
for the full analysis timeout.

	breaker := resilience.New("analysis-backend", resilience.Settings{
		Threshold: 5,
		Cooldown:  30 * time.Second,
	})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Post("/api/analyze")
	})

Transitions:

	Closed --[Threshold unreachable]-> Open --[Cooldown]-> Half-Open --[trial answered]-> Closed
	                                                           |
	                                                    [trial unreachable]
	                                                           v
	                                                          Open

# In-flight guard

InFlight rejects a second identical operation while the first is running.
The relays key it on the uploader session and a digest of the file content,
so a double submit of the same bytes is refused while different files that
happen to share a name and size proceed.
*/
package resilience
