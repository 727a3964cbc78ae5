// Package storage provides the authoritative URL stores behind the
// shortener: an in-memory map, SQLite (through sqlx, with either the pure Go
// or the cgo driver) and Redis (behind a circuit breaker).
//
// All backends share the Store interface and the same semantics: codes are
// never overwritten, expired records behave as missing, and DeleteExpired
// reports exactly which codes it removed so callers can invalidate caches.
package storage
