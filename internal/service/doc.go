// Package service contains the task use cases. TaskService resolves the
// acting user and the task through the stores, applies the permission rule
// from the domain package to every mutation, writes the change and then
// announces it as a lifecycle event.
//
// Reads are not gated here; the HTTP layer only requires an authenticated
// caller. Session handling lives in the auth subpackage.
package service
