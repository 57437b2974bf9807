// Package api is the REST client for the Vira a Página backend.
//
// Every request carries the current session token as a bearer credential
// and a fresh X-Request-ID. Failures are reported with the sentinel errors
// in errors.go; callers match them with errors.Is, and use errors.As with
// *StatusError when they need the HTTP status code.
//
// Reads (GET) are retried with exponential backoff while the backend is
// unreachable. Writes are sent exactly once.
package api
