package cwn

import (
	"sync"
	"time"
)

//simple in memory cache of parsed gazetteers, keyed by file path.
//only matters when the process outlives one check (warm lambda containers)

var Cache = newGazetteerCache()

type GazetteerCache struct {
	entries    map[string]*gazetteerCacheEntry
	globalLock *sync.Mutex
	now        func() time.Time
}

type gazetteerCacheEntry struct {
	gazetteer *Gazetteer
	expiry    time.Time
}

func newGazetteerCache() *GazetteerCache {
	return &GazetteerCache{
		entries:    make(map[string]*gazetteerCacheEntry),
		globalLock: new(sync.Mutex),
		now:        time.Now,
	}
}

// Get returns the cached gazetteer for path, or nil when absent or expired
func (c *GazetteerCache) Get(path string) *Gazetteer {
	c.globalLock.Lock()
	defer c.globalLock.Unlock()

	entry, exists := c.entries[path]
	if !exists {
		return nil
	}

	if !entry.expiry.IsZero() && c.now().After(entry.expiry) {
		delete(c.entries, path)
		return nil
	}

	return entry.gazetteer
}

// Put stores a gazetteer; ttl <= 0 never expires
func (c *GazetteerCache) Put(path string, gazetteer *Gazetteer, ttl time.Duration) {
	c.globalLock.Lock()
	defer c.globalLock.Unlock()

	entry := &gazetteerCacheEntry{gazetteer: gazetteer}
	if ttl > 0 {
		entry.expiry = c.now().Add(ttl)
	}

	c.entries[path] = entry
}

func (c *GazetteerCache) Destroy() {
	c.globalLock.Lock()
	defer c.globalLock.Unlock()

	c.entries = make(map[string]*gazetteerCacheEntry)
}

// LoadGazetteerCached is LoadGazetteer backed by the process-wide Cache
func LoadGazetteerCached(path string, ttl time.Duration) (*Gazetteer, error) {
	if gazetteer := Cache.Get(path); gazetteer != nil {
		Log.Debugf("Using cached zip codes for %s", path)
		return gazetteer, nil
	}

	gazetteer, err := LoadGazetteer(path)
	if err != nil {
		return nil, err
	}

	Cache.Put(path, gazetteer, ttl)

	return gazetteer, nil
}
