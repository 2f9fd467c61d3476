// Package server wires the switcher backend together.
//
// Server Lifecycle:
//  1. Load configuration from the environment
//  2. Initialize logger (production or development)
//  3. Create metrics on a private Prometheus registry
//  4. Create the dispatcher and apply the startup snapshot, if configured
//  5. Setup HTTP routes, WebSocket and middleware
//  6. Serve until the context is cancelled, then shut down gracefully
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	err = srv.Run(ctx)
package server
