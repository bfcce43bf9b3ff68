// Package events carries task lifecycle notifications from the services to
// whoever is interested in them, without the services knowing the
// listeners. Services emit a TaskEvent after a mutation commits; handlers
// registered on the emitter receive it synchronously.
//
// The primary components are:
// - TaskEvent: a record of one task mutation
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - AuditLogHandler: a handler writing each event to the structured log
package events
