// Package cli provides the interactive Vira a Página command-line client.
//
// It wires the session, the REST-backed services and an interactive REPL.
// Typical flow: wait for the persisted session to load, then read commands
// until the user exits.
//
// Key features:
//   - Register / Login / Moderator login / Logout
//   - List my exchanges, accept or reject proposals addressed to me
//   - Search the catalog and propose exchanges
//   - Moderator tools: list, search, override status, delete
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
