// Package services contains the application services of the menuroll client:
// the recipe collection, menu rolls, cook history, settings, backup
// export/import and remote sync.
//
// Services are constructed over a *sql.DB and build their repositories on
// demand, so a multi-statement write can run the same repositories inside
// dbx.WithTx.
package services
