// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Three stores back the application: UserStore (identities), TaskStore
// (tasks and their comments) and TokenStore (the ledger of issued access
// tokens). Every implementation can be bound to a *sql.Tx with WithTx so
// services can compose several calls into one transaction.
package store
