// Package middleware provides gin middleware for the switcher API:
// CORS, rate limiting, request IDs, request logging and panic recovery.
package middleware
