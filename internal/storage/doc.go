// Package storage provides SQLite-backed repositories for the clinic's
// entities, the shared connection provider, and the versioned schema
// migration runner with its ledger.
package storage
