// Package lru provides a generic, thread-safe least-recently-used cache
// with an eviction callback.
//
// The callback lets a cache own values that hold external resources, such
// as reference-counted GPU meshes, and release them when they fall out:
//
//	c := lru.New[string, *geometry.Mesh](8, func(_ string, m *geometry.Mesh) {
//	    m.Release()
//	})
//
// Callbacks run after the cache lock is released, so they may call back
// into the cache.
package lru
