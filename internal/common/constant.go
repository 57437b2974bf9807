// Package common contains small helpers and constants shared by the client
// packages.
package common

// Header names set on outbound HTTP requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeHeaderName   = "Content-Type"

	JSONContentType = "application/json"
)

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "
