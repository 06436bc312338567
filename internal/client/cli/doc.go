// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the HTTP API client and a small REPL. A background
// watcher probes the server and shows online/offline in the prompt.
//
// Commands: sign-up, sign-in, sign-out, list. The session token lives in
// memory only and is dropped on sign-out or exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
