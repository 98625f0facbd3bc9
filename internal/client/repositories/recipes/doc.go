// Package recipes provides the local persistence layer for recipes.
//
// The Repository interface is implemented by SQLiteRepository over a
// dbx.DBTX, so the same code runs on *sql.DB and inside dbx.WithTx.
// Ingredients, steps and tags are stored as JSON text columns; timestamps
// as Unix milliseconds.
//
// Recipes are never removed: SoftDelete sets the deleted flag so that the
// deletion is exported and reaches other devices. Upsert is keyed by sync id
// and is what the backup merger uses.
//
// Typical usage
//
//	repo := recipes.NewSQLiteRepository(db)
//	_ = repo.Create(ctx, &rec)
//	menu, _ := repo.RandomByCategory(ctx, models.CategorySoup, 2, nil)
package recipes
