// Package domain contains the core business entities of the task tracker:
// users and their roles, tasks with their priority and status, comments,
// and the bearer tokens recorded in the session ledger. It also owns the
// single permission rule that decides who may mutate a task.
//
// Entities reference each other only by ID. Resolving a reference is the
// job of the store layer.
package domain
