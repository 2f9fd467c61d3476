/*
Package resilience provides a circuit breaker for calls to the switcher API.

# States

- Closed: calls pass through; failures are counted
- Open: calls fail immediately with ErrCircuitOpen
- Half-Open: a limited number of trial calls decide whether to close

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open

# Usage

	breaker := resilience.New("switcher-api", resilience.Settings{
		Timeout:     10 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 3 },
	})

	snap, err := resilience.Execute(breaker, func() (types.Snapshot, error) {
		return fetch(ctx)
	})

Settings.IsFailure decides which errors count against the breaker, so
client errors reported by a healthy server can be excluded.
*/
package resilience
