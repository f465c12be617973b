package imagecache

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidCapacity is returned when a cache is created with a
// non-positive capacity.
var ErrInvalidCapacity = errors.New("imagecache: capacity must be positive")

// Image is a cached GPU resource. Release frees the backing texture memory;
// it is called exactly once, when the image is evicted or purged.
type Image interface {
	// SizeBytes returns the GPU memory footprint of the image.
	SizeBytes() int

	// Release frees the backing resource.
	Release()
}

// Cache is a two-tier image cache: a pinned tier the current frame holds
// alive, and an unpinned LRU tier of bounded entry count.
//
// Pinned images are never evicted. Unpinning moves an image into the LRU,
// which may evict (and Release) the coldest entries to stay within capacity.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable] struct {
	mu       sync.Mutex
	pinned   map[K]Image
	unpinned *lru.Cache[K, Image]

	// suppressEvict disables the eviction callback while the cache is
	// intentionally detaching entries (promotion, explicit removal) so
	// those paths control the release themselves.
	suppressEvict bool

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache whose unpinned tier holds at most capacity entries.
func New[K comparable](capacity int) (*Cache[K], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	c := &Cache[K]{
		pinned: make(map[K]Image),
	}
	unpinned, err := lru.NewWithEvict[K, Image](capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("imagecache: %w", err)
	}
	c.unpinned = unpinned
	return c, nil
}

// onEvict releases an image pushed out of the unpinned tier. The LRU calls
// it for explicit Remove/Purge as well, so paths that manage the release
// themselves set suppressEvict first. Always runs while c.mu is held.
func (c *Cache[K]) onEvict(_ K, img Image) {
	if c.suppressEvict {
		return
	}
	c.evictions++
	img.Release()
}

// detach removes key from the unpinned tier without releasing it.
// Caller must hold c.mu.
func (c *Cache[K]) detach(key K) {
	c.suppressEvict = true
	c.unpinned.Remove(key)
	c.suppressEvict = false
}

// Pin inserts img under key in the pinned tier, promoting it out of the
// unpinned tier if present. Pinning an already-pinned key is a no-op.
func (c *Cache[K]) Pin(key K, img Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pinned[key]; ok {
		return
	}
	// Promote without releasing: the caller's img is the same resource.
	if cached, ok := c.unpinned.Peek(key); ok {
		c.detach(key)
		img = cached
	}
	c.pinned[key] = img
}

// Unpin moves one pinned image into the unpinned LRU tier. No-op if the key
// is not pinned. The move may evict cold entries.
func (c *Cache[K]) Unpin(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.pinned[key]
	if !ok {
		return
	}
	delete(c.pinned, key)
	c.unpinned.Add(key, img)
}

// UnpinAll moves every pinned image into the unpinned tier. Render contexts
// call this at the start of each sync phase to relieve memory pressure
// before the new frame allocates resources.
func (c *Cache[K]) UnpinAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, img := range c.pinned {
		delete(c.pinned, key)
		c.unpinned.Add(key, img)
	}
}

// Get retrieves an image from either tier, preferring pinned. A hit in the
// unpinned tier refreshes its recency.
func (c *Cache[K]) Get(key K) (Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.pinned[key]; ok {
		c.hits++
		return img, true
	}
	if img, ok := c.unpinned.Get(key); ok {
		c.hits++
		return img, true
	}
	c.misses++
	return nil, false
}

// Remove deletes and releases the image under key, whichever tier holds it.
// Returns true if an image was removed.
func (c *Cache[K]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.pinned[key]; ok {
		delete(c.pinned, key)
		img.Release()
		return true
	}
	if img, ok := c.unpinned.Peek(key); ok {
		c.detach(key)
		img.Release()
		return true
	}
	return false
}

// Purge releases every image in both tiers.
func (c *Cache[K]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, img := range c.pinned {
		delete(c.pinned, key)
		img.Release()
	}
	for _, key := range c.unpinned.Keys() {
		if img, ok := c.unpinned.Peek(key); ok {
			c.detach(key)
			img.Release()
		}
	}
}

// PinnedLen returns the number of pinned images.
func (c *Cache[K]) PinnedLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pinned)
}

// UnpinnedLen returns the number of images in the LRU tier.
func (c *Cache[K]) UnpinnedLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unpinned.Len()
}

// Stats contains cache statistics.
type Stats struct {
	// Pinned is the current number of pinned images.
	Pinned int
	// Unpinned is the current number of images in the LRU tier.
	Unpinned int
	// PinnedBytes is the total footprint of the pinned tier.
	PinnedBytes int64
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// Evictions is the number of released-by-eviction images.
	Evictions uint64
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[K]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pinnedBytes int64
	for _, img := range c.pinned {
		pinnedBytes += int64(img.SizeBytes())
	}
	return Stats{
		Pinned:      len(c.pinned),
		Unpinned:    c.unpinned.Len(),
		PinnedBytes: pinnedBytes,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
	}
}
