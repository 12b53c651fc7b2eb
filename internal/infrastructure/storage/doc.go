// Package storage provides the key-value backends that hold assessment
// snapshots: an in-memory map for tests and ephemeral runs, and a Badger
// database for durable state. Namespace scopes a backend to one session.
package storage
