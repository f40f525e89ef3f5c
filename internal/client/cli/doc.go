// Package cli provides the interactive daylight command-line client.
//
// It wires configuration, the local database, the HTTP gateway, the session
// holder and the sync engine behind an interactive REPL that keeps working
// offline. Typical flow: restore persisted state, start a background
// connectivity watcher, and execute user commands while the engine syncs in
// the background.
//
// Key features:
//   - Record answers and demographic responses (durable immediately)
//   - Attach a resume, with best-effort answer suggestions extracted from it
//   - Submit the application once everything is confirmed
//   - Magic-link sign-in to resume a draft started elsewhere
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
