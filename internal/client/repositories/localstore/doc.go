// Package localstore provides the client's durable key/value storage, the
// terminal-side equivalent of a browser's localStorage.
//
// # Overview
//
// Repository describes the operations; SQLiteRepository persists them in the
// local_storage table created by internal/client/migrations. It runs over a
// dbx.DBTX, so a caller can group several writes in one transaction with
// dbx.WithTx.
//
// Typical Usage
//
//	repo := localstore.NewSQLiteRepository(db)
//	_ = repo.SetItem(ctx, "auth_token", token)
//	v, ok, _ := repo.GetItem(ctx, "auth_token")
//	_ = repo.RemoveItem(ctx, "auth_token")
package localstore
