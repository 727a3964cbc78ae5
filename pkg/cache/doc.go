// Package cache provides the bounded LRU cache that sits in front of the
// URL store on the redirect path.
//
// Callers use it read-through: Get first, consult the store on a miss, then
// Put what the store returned. Misses from the store are never cached, and
// anything removed from the store must be Invalidated so the cache never
// holds a key the store no longer has.
package cache
