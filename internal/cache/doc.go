// Package cache implements the in-process read cache: TTL entries,
// lazy expiry on read, and a periodic background sweep. Staleness
// tolerance is decided entirely by the TTL chosen at write time.
package cache
