// Package sqlite implements the store interfaces with gorm on top of
// SQLite. It backs local development and in-process tests, and shares the
// DBTX transaction contract with the postgres package: a *sql.Tx obtained
// from the underlying connection pool can be bound to any store with WithTx.
package sqlite
