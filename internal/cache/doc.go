// Package cache implements a single-process, in-memory key–value cache that
// evicts by priority first and by recency second.
//
// Goals for this package:
//   - Make the core data structures explicit (map + doubly-linked list)
//   - Evict the lowest-priority entry when full, least-recently-used among equals
//   - Support per-entry TTL with both lazy and active expiration
//   - Keep stats and entries consistent under one mutex
//   - Own and cleanly stop long-lived goroutines (no leaks on shutdown)
//
// Removal paths are deliberately counted differently:
//   - Priority eviction increments Stats.Evictions and fires EventEviction.
//   - Lazy expiry found by Get increments Stats.Misses and fires EventMiss.
//   - The background sweeper touches no counter and fires no event.
//   - Delete touches no counter and fires no event.
package cache
