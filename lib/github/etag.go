// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import "sync"

// defaultETagCapacity bounds the cache. Run lists are a handful of
// URLs per repository, but retention looks up every executed run by
// ID, so the URL space grows with the executed set.
const defaultETagCapacity = 1024

type etagEntry struct {
	etag string
	body []byte
}

// etagCache remembers the last ETag and body per URL so repeated polls
// can send If-None-Match and answer a 304 locally. A 304 does not
// count against the primary rate limit. When full, the oldest inserted
// URL is evicted.
type etagCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]etagEntry
	order    []string
}

func newETagCache() *etagCache {
	return &etagCache{capacity: defaultETagCapacity, entries: make(map[string]etagEntry)}
}

// lookup returns the cached ETag and body for url.
func (cache *etagCache) lookup(url string) (string, []byte, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[url]
	return entry.etag, entry.body, ok
}

// put records etag and body for url. An empty etag is ignored.
func (cache *etagCache) put(url, etag string, body []byte) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if _, ok := cache.entries[url]; !ok {
		for len(cache.order) >= cache.capacity {
			delete(cache.entries, cache.order[0])
			cache.order = cache.order[1:]
		}
		cache.order = append(cache.order, url)
	}
	cache.entries[url] = etagEntry{etag: etag, body: body}
}

// len returns the number of cached URLs.
func (cache *etagCache) len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.entries)
}
