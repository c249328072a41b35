// Package sqlite provides the SQLite-backed persistence layer: the
// per-project vector index, the ingestion ledger, the query and answer
// caches, and project statistics. A single database file holds all state;
// namespaces keep projects isolated.
package sqlite
