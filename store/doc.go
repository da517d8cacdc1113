// Package store provides the relational collaborator behind persona overrides
// and conversation summaries, backed by SQLite. The core treats it as an
// opaque read/write handle; schema mechanics stay inside this package.
package store
