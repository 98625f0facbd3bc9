// Package cli provides the interactive menuroll command-line client.
//
// It wires configuration, the local store, the services and an interactive
// REPL. Typical flow: unlock the stored credentials (asking for the local
// passphrase when one is set), then execute user commands until exit.
//
// Key features:
//   - Recipes: add, edit, list, show, search, delete and restore
//   - Menus: roll, reroll a dish, accept into history with a prep checklist
//   - Backup files: export and import with a merge strategy
//   - Remote sync: configure, test, upload, download and two-way sync
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
