// Package ws streams the live app list to views over WebSocket.
//
// On connect the server sends the current snapshot, then one snapshot
// message after every accepted event. Views may send event envelopes,
// the same JSON accepted by POST /events; a rejected envelope is answered
// with an error message carrying the HTTP-equivalent status.
//
// Message Types (Server → Client):
//   - snapshot: revision, kind and full snapshot
//   - error: rejected envelope
//   - pong: reply to {"type":"ping"}
//
// Example Usage:
//
//	handler := ws.NewHandler(dispatcher, metrics, logger)
//	router.GET("/ws", handler.HandleConnection)
package ws
