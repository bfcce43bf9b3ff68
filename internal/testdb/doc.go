//go:build integration

// Package testdb provides a PostgreSQL harness for integration tests.
//
// Tests that use it are built with the integration tag and read the
// connection URL from DATABASE_URL; they skip when it is unset. The schema
// is brought up with the same embedded goose migrations the migrate command
// runs, and each test works inside a transaction that is rolled back.
package testdb
