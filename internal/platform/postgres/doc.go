// Package postgres provides PostgreSQL implementations of the store
// interfaces over database/sql and the pgx stdlib driver. It also embeds
// the schema migrations and runs them with goose.
package postgres
