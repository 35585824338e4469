// Package cache memoizes Nemesis compression results so that repeated CLI
// batch runs (-glob, -bundle) over unchanged tile data skip re-running the
// code generator. It is grounded on internal/decompressioncache's
// checkpoint/stepper cache, adapted from memoizing progressive decompressed
// reads to memoizing whole compress-call results, and from bigcache's
// bounded-byte-size eviction to tinylfu's bounded-entry-count admission
// policy (see DESIGN.md for why).
package cache

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
)

// Key identifies a memoized result: the content hash of the raw input
// bytes plus a mode byte distinguishing the operation (the same bytes
// compress differently under Accurate vs Optimal; the CLI also caches
// decompression results under their own mode value).
type Key struct {
	Hash uint64
	Mode uint8
}

func KeyFor(mode uint8, rawInput []byte) Key {
	return Key{Hash: xxhash.Sum64(rawInput), Mode: mode}
}

func (k Key) String() string {
	return fmt.Sprintf("%016x_%d", k.Hash, k.Mode)
}

var keyHashSeed = maphash.MakeSeed()

func hashKey(k Key) uint64 {
	return maphash.Comparable(keyHashSeed, k)
}

// Cache memoizes compression output. It always keeps a bounded in-process
// tinylfu layer; an optional pebble database backs it on disk so memoized
// results survive across CLI invocations when -cache-dir is given.
type Cache struct {
	mu   sync.Mutex
	lfu  *tinylfu.T[Key, []byte]
	disk *pebble.DB
}

// New creates an in-process-only cache holding up to capacity entries.
func New(capacity int) *Cache {
	return &Cache{lfu: tinylfu.New[Key, []byte](capacity, capacity*10, hashKey)}
}

// Open creates a cache additionally backed by a pebble database at dir.
func Open(capacity int, dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", dir, err)
	}
	return &Cache{lfu: tinylfu.New[Key, []byte](capacity, capacity*10, hashKey), disk: db}, nil
}

// Close releases the on-disk database, if any.
func (c *Cache) Close() error {
	if c.disk == nil {
		return nil
	}
	return c.disk.Close()
}

// Get returns a previously memoized compression result for key, checking
// the in-process layer first and falling back to disk.
func (c *Cache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	if v, ok := c.lfu.Get(key); ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	if c.disk == nil {
		return nil, false
	}

	v, closer, err := c.disk.Get(diskKey(key))
	if err != nil {
		return nil, false
	}
	defer closer.Close()

	out := append([]byte(nil), v...)
	c.mu.Lock()
	c.lfu.Add(key, out)
	c.mu.Unlock()
	return out, true
}

// Put memoizes a compression result for key.
func (c *Cache) Put(key Key, result []byte) error {
	c.mu.Lock()
	c.lfu.Add(key, append([]byte(nil), result...))
	c.mu.Unlock()

	if c.disk == nil {
		return nil
	}
	return c.disk.Set(diskKey(key), result, pebble.Sync)
}

func diskKey(key Key) []byte {
	b := make([]byte, 9)
	binary.BigEndian.PutUint64(b, key.Hash)
	b[8] = key.Mode
	return b
}
