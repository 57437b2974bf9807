// Package session owns the authentication state of the client: who is logged
// in and with which bearer token.
//
// A Manager is created explicitly and handed to whoever needs identity. Other
// components read it through the Reader interface or Subscribe; only the
// Manager's own operations (Initialize, Login, Logout, UpdateUser) mutate it.
//
// The state survives restarts through a Storage (the local SQLite key/value
// table) under two keys: UserKey holds the JSON user record and TokenKey the
// raw token. Login writes both in one transaction, Logout removes both, and
// UpdateUser rewrites UserKey only.
//
// Initialize reads the persisted pair once at startup. A corrupted record is
// a recovered fault: both keys are dropped and the client starts logged out.
// Ready is closed when Initialize finishes so a UI can wait before rendering.
package session
