// Package history persists accepted menus (history records) in the local
// SQLite database. Snapshots, category counts and the prep checklist are
// JSON columns, so a record stays self-contained when recipes change.
package history
