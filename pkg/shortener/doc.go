// Package shortener implements the URL shortening service: code
// generation, URL validation, the read-through redirect path and expiry
// pruning.
//
// # Read-Through Lookup
//
// Resolve consults the bounded LRU cache first and falls back to the store
// on a miss, copying store hits into the cache. Store misses are never
// cached, so a code created later is visible immediately.
//
// # Consistency
//
// The cache holds only immutable code -> Link pairs written through Shorten
// or copied from the store. Each Link carries the record's expiry, so a
// cached link stops resolving at the same instant the store stops
// returning it. Anything the store deletes (PruneExpired) is invalidated
// from the cache in the same call.
package shortener
