package health

import (
	"hash/fnv"
	"sync"
)

// LatestCache holds the single latest health record per vehicle.
// Implementations must allow concurrent access for different vehicles
// without contention between them.
type LatestCache interface {
	// Get returns the latest record for a vehicle, or false if the
	// vehicle has none cached.
	Get(vehicleID string) (*Record, bool)

	// Put stores the record as the vehicle's latest. A record older
	// than the cached entry is discarded: a cache-miss fill racing a
	// concurrent ingestion must never roll the entry backwards.
	Put(record *Record)

	// Snapshot returns the latest record for every cached vehicle.
	Snapshot() map[string]*Record
}

// cacheShards is the number of lock stripes. Vehicles hash onto shards so
// ingestions for different vehicles rarely share a lock.
const cacheShards = 32

// cacheShard is one lock stripe of the cache.
type cacheShard struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// StripedCache is an in-process LatestCache with per-shard locking.
type StripedCache struct {
	shards [cacheShards]cacheShard
}

// NewStripedCache creates an empty striped latest-record cache.
func NewStripedCache() *StripedCache {
	c := &StripedCache{}
	for i := range c.shards {
		c.shards[i].records = make(map[string]*Record)
	}
	return c
}

// shard selects the lock stripe for a vehicle id.
func (c *StripedCache) shard(vehicleID string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(vehicleID))
	return &c.shards[h.Sum32()%cacheShards]
}

// Get returns the latest record for a vehicle.
func (c *StripedCache) Get(vehicleID string) (*Record, bool) {
	s := c.shard(vehicleID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[vehicleID]
	if !ok {
		return nil, false
	}

	cpy := *r
	return &cpy, true
}

// Put stores the record as the vehicle's latest, keeping whichever of
// the incoming and cached records is newer. The comparison happens under
// the shard lock, so an interleaved read-then-fill cannot overwrite a
// fresher ingestion.
func (c *StripedCache) Put(record *Record) {
	s := c.shard(record.VehicleID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.VehicleID]; ok && existing.CreatedAt.After(record.CreatedAt) {
		return
	}

	cpy := *record
	s.records[record.VehicleID] = &cpy
}

// Snapshot copies the latest record for every cached vehicle.
func (c *StripedCache) Snapshot() map[string]*Record {
	out := make(map[string]*Record)
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for id, r := range s.records {
			cpy := *r
			out[id] = &cpy
		}
		s.mu.RUnlock()
	}
	return out
}

// Ensure StripedCache implements LatestCache interface.
var _ LatestCache = (*StripedCache)(nil)
