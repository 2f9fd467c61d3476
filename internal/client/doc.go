// Package client is a Go client for the switcher HTTP API.
//
// Requests go through resty on top of a retrying transport, and a circuit
// breaker stops calling a server that keeps failing. Rejections from a
// healthy server (unknown app, malformed event) do not trip the breaker and
// unwrap to the engine's sentinel errors:
//
//	c := client.New(client.DefaultConfig())
//	_, err := c.Dispatch(ctx, applist.HotCodeUpdated{AppName: "Mail", Value: "KeyM"})
//	if errors.Is(err, applist.ErrUnknownApp) {
//	    // ...
//	}
package client
