// Package playcore is a resilient client-side networking core for talking to a
// remote game backend over an unreliable network. It turns a logical request
// into a reliable, observable operation:
//
//   - Bounded retries with exponential backoff + jitter
//   - Per-attempt timeouts with transport cancellation
//   - Transparent access-token refresh (single-flight) with one replay
//   - Serialized (FIFO) or parallel request dispatch
//   - Optional circuit breaker, rate limiting and GET response caching
//   - Prometheus metrics and lightweight structured debug logging
//
// Domain wrappers (auth, key-value storage, leaderboards, remote config) are
// thin pass-throughs over Client.Request; they inherit every reliability
// feature without extra code.
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Expected failures never panic: every operation returns a Result envelope
//   - Safe concurrent use of a single *Client instance
//   - Pluggable transport, token store, clock and event sinks for testing
//
// Typical usage:
//
//	client := playcore.New("https://api.example.com",
//	    playcore.WithProjectKey("proj_123"),
//	    playcore.WithMaxRetries(3),
//	    playcore.WithTimeout(10*time.Second),
//	)
//	defer client.Close()
//
//	res := client.Storage().Get(ctx, "save-slot-1")
//	if !res.OK {
//	    log.Println(res.Err.Kind, res.Err.Message)
//	}
//
// Serialized dispatch is the default: it sidesteps concurrent-refresh and
// lost-update races at the cost of throughput. Opt into parallel dispatch with
// WithParallelDispatch when ordering does not matter.
package playcore
