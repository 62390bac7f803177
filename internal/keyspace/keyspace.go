// Package keyspace implements the concurrent String -> Entry map: per-key
// atomic get-decide-mutate, a read/write lock per shard so that keys in
// different shards never contend, and TTL bookkeeping delegated to
// internal/expiry.
package keyspace

import (
	"hash/fnv"
	"path"
	"sync"
	"time"

	"github.com/akashmaji946/redikv/internal/expiry"
	"github.com/akashmaji946/redikv/internal/metrics"
)

const shardCount = 32

// SetBehaviour gates whether a SET proceeds against the current presence of
// the key.
type SetBehaviour int

const (
	Force SetBehaviour = iota
	OnlyIfNotExists
	OnlyIfExists
)

// ExpireBehaviour gates installation of a new TTL against the key's current
// TTL.
type ExpireBehaviour int

const (
	ExpireForce ExpireBehaviour = iota
	OnlyIfNoExpiry
	OnlyIfExpiry
	OnlyIfGreater
	OnlyIfLess
)

// SetOptions controls how Set decides whether/how to write: which
// existence behaviour gates the write, whether/what TTL to install, and
// whether to preserve the existing TTL.
type SetOptions struct {
	Behaviour SetBehaviour
	HasExpiry bool
	Expiry    time.Duration
	KeepTTL   bool
}

// SetResult reports what Set actually did so callers can construct the
// right reply shape (SimpleString("OK") / NullString / prior value).
type SetResult struct {
	Applied    bool
	HadPrior   bool
	PriorValue []byte
}

type shard struct {
	mu sync.RWMutex
	m  map[string]*Entry
}

// Keyspace is the thread-safe map of String -> Entry. The zero value is not
// usable; construct one with New.
type Keyspace struct {
	shards [shardCount]*shard
	exp    *expiry.Service
	met    *metrics.Metrics
}

// New constructs a Keyspace backed by its own expiration agent. Callers
// must run Run in its own goroutine for the keyspace's TTLs to take effect.
// met may be nil, in which case metrics are simply not recorded.
func New(met *metrics.Metrics) *Keyspace {
	ks := &Keyspace{met: met}
	for i := range ks.shards {
		ks.shards[i] = &shard{m: make(map[string]*Entry)}
	}
	ks.exp = expiry.New(ks.onExpire)
	return ks
}

// Run drives the background expiration agent until stop is closed.
func (ks *Keyspace) Run(stop <-chan struct{}) {
	ks.exp.Run(stop)
}

func (ks *Keyspace) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return ks.shards[h.Sum32()%shardCount]
}

// onExpire is called from the expiration agent's own goroutine. It must
// never block on anything the agent itself could be waiting on, so the
// actual keyspace mutation (which needs a shard lock a producer might be
// holding while it talks to the agent) is handed off to its own goroutine.
func (ks *Keyspace) onExpire(key string, h expiry.Handle) {
	go ks.removeIfOwnedBy(key, h)
}

func (ks *Keyspace) removeIfOwnedBy(key string, h expiry.Handle) {
	sh := ks.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[key]
	if !ok || e.Handle != h {
		// Superseded by a later write (new value, new TTL, or TTL
		// cleared) since this deadline was scheduled; nothing to do.
		return
	}
	delete(sh.m, key)
	if ks.met != nil {
		ks.met.KeysExpired.Inc()
		ks.met.LiveKeys.Dec()
	}
}

// Get returns a copy of the current value for key, or (nil, false) if
// absent or already past its deadline. Readers never block each other; a
// reader waits only while a writer holds the lock of the key's shard.
func (ks *Keyspace) Get(key string) ([]byte, bool) {
	sh := ks.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.m[key]
	if !ok || e.expired(time.Now()) {
		return nil, false
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, true
}

// Set applies value to key per opts, performing the lookup, behaviour
// decision and mutation atomically with respect to any other operation on
// this same key.
func (ks *Keyspace) Set(key string, value []byte, opts SetOptions) SetResult {
	sh := ks.shardFor(key)

	sh.mu.Lock()
	old, exists := sh.m[key]
	if exists && old.expired(time.Now()) {
		exists = false
	}

	var result SetResult
	if exists {
		result.HadPrior = true
		result.PriorValue = append([]byte(nil), old.Value...)
	}

	switch opts.Behaviour {
	case OnlyIfNotExists:
		if exists {
			sh.mu.Unlock()
			return result
		}
	case OnlyIfExists:
		if !exists {
			sh.mu.Unlock()
			return result
		}
	}

	newEntry := &Entry{Value: append([]byte(nil), value...)}

	var oldHandle expiry.Handle
	hadHandle := exists && old.hasTTL()
	if hadHandle {
		oldHandle = old.Handle
	}

	type ttlAction int
	const (
		ttlNone ttlAction = iota
		ttlInsert
		ttlReset
		ttlRemove
	)

	action := ttlNone
	switch {
	case opts.HasExpiry && !opts.KeepTTL:
		if hadHandle {
			action = ttlReset
		} else {
			action = ttlInsert
		}
	case opts.KeepTTL:
		if hadHandle {
			newEntry.Handle = oldHandle
			newEntry.ExpiresAt = old.ExpiresAt
		}
	default:
		if hadHandle {
			action = ttlRemove
		}
	}

	sh.m[key] = newEntry

	// It is safe to reach the agent's mailbox while holding this shard's
	// lock because onExpire never re-enters a shard lock synchronously
	// (see onExpire above) — so doing this under the lock cannot deadlock,
	// and it keeps the whole get-decide-mutate-schedule sequence atomic.
	switch action {
	case ttlInsert:
		h := ks.exp.Insert(key, opts.Expiry)
		newEntry.Handle = h
		newEntry.ExpiresAt = time.Now().Add(opts.Expiry)
	case ttlReset:
		ks.exp.Reset(oldHandle, opts.Expiry)
		newEntry.Handle = oldHandle
		newEntry.ExpiresAt = time.Now().Add(opts.Expiry)
	case ttlRemove:
		ks.exp.Remove(oldHandle)
	}

	sh.mu.Unlock()
	result.Applied = true
	if !result.HadPrior && ks.met != nil {
		ks.met.LiveKeys.Inc()
	}
	return result
}

// Delete removes each of keys that currently exists and returns how many
// were removed.
func (ks *Keyspace) Delete(keys []string) int {
	removed := 0
	for _, key := range keys {
		sh := ks.shardFor(key)
		sh.mu.Lock()
		e, ok := sh.m[key]
		if ok && !e.expired(time.Now()) {
			if e.hasTTL() {
				ks.exp.Remove(e.Handle)
			}
			delete(sh.m, key)
			removed++
			if ks.met != nil {
				ks.met.LiveKeys.Dec()
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// TTLSeconds returns the remaining TTL in whole seconds, -1 if the key
// exists without a TTL, or -2 if the key does not exist / already expired.
func (ks *Keyspace) TTLSeconds(key string) int64 {
	return ks.ttl(key, time.Second)
}

// TTLMillis is TTLSeconds' millisecond-resolution counterpart.
func (ks *Keyspace) TTLMillis(key string) int64 {
	return ks.ttl(key, time.Millisecond)
}

func (ks *Keyspace) ttl(key string, unit time.Duration) int64 {
	sh := ks.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.m[key]
	now := time.Now()
	if !ok || e.expired(now) {
		return -2
	}
	if !e.hasTTL() {
		return -1
	}
	remaining := e.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return int64(remaining / unit)
}

// SetExpire installs or rewrites key's TTL per behaviour, comparing against
// the current deadline where the behaviour calls for it. It reports whether
// the TTL was changed.
func (ks *Keyspace) SetExpire(key string, ttl time.Duration, behaviour ExpireBehaviour) bool {
	sh := ks.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.m[key]
	now := time.Now()
	if !ok || e.expired(now) {
		return false
	}

	newDeadline := now.Add(ttl)
	switch behaviour {
	case OnlyIfNoExpiry:
		if e.hasTTL() {
			return false
		}
	case OnlyIfExpiry:
		if !e.hasTTL() {
			return false
		}
	case OnlyIfGreater:
		if e.hasTTL() && !newDeadline.After(e.ExpiresAt) {
			return false
		}
	case OnlyIfLess:
		if e.hasTTL() && !newDeadline.Before(e.ExpiresAt) {
			return false
		}
	}

	if e.hasTTL() {
		ks.exp.Reset(e.Handle, ttl)
	} else {
		e.Handle = ks.exp.Insert(key, ttl)
	}
	e.ExpiresAt = newDeadline
	return true
}

// Keys returns every live key matching glob (shell-style, per path.Match).
func (ks *Keyspace) Keys(glob string) []string {
	var out []string
	now := time.Now()
	for _, sh := range ks.shards {
		sh.mu.RLock()
		for k, e := range sh.m {
			if e.expired(now) {
				continue
			}
			if ok, _ := path.Match(glob, k); ok {
				out = append(out, k)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}
