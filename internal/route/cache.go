package route

import (
	"fmt"

	"github.com/bluele/gcache"

	"github.com/ksai0398/railway-navigation-app/internal/station"
)

type cacheKey struct {
	gateID     string
	platformID string
}

// Cache materializes routes on demand and keeps the most recently used
// paths. Cached paths are shared; callers must treat them as read-only.
type Cache struct {
	topo *station.Topology
	lru  gcache.Cache
}

// NewCache creates a path cache over topo holding at most size paths
func NewCache(topo *station.Topology, size int) *Cache {
	if size < 1 {
		size = 1
	}
	c := &Cache{topo: topo}
	c.lru = gcache.New(size).
		LRU().
		LoaderFunc(c.load).
		Build()
	return c
}

func (c *Cache) load(key interface{}) (interface{}, error) {
	k := key.(cacheKey)
	r, err := c.topo.Route(k.gateID, k.platformID)
	if err != nil {
		return nil, err
	}
	return Materialize(c.topo, r.Instructions, k.gateID), nil
}

// Get returns the materialized path for a gate/platform pair.
// A pair without an authored route returns station.ErrNoRoute.
func (c *Cache) Get(gateID, platformID string) (Path, error) {
	v, err := c.lru.Get(cacheKey{gateID: gateID, platformID: platformID})
	if err != nil {
		return Path{}, fmt.Errorf("materialize %s: %w", station.RouteKey(gateID, platformID), err)
	}
	return v.(Path), nil
}

// Len returns the number of cached paths
func (c *Cache) Len() int {
	return c.lru.Len(false)
}
