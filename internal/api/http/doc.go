// Package http exposes the app list over a JSON API.
//
// Views read the live snapshot and its selectors, and post event
// envelopes to change it:
//
//	POST /events {"type":"hotCodeUpdated","appName":"Safari","value":"KeyS"}
//
// Engine errors map to statuses: an unknown app is 404, a malformed or
// unknown event is 400.
package http
