package keyspace

import (
	"sync"
	"testing"
	"time"
)

func newRunning(t *testing.T) *Keyspace {
	t.Helper()
	ks := New(nil)
	stop := make(chan struct{})
	go ks.Run(stop)
	t.Cleanup(func() { close(stop) })
	return ks
}

func TestSetThenGet(t *testing.T) {
	ks := newRunning(t)
	res := ks.Set("k", []byte("v"), SetOptions{Behaviour: Force})
	if !res.Applied {
		t.Fatal("expected SET to apply")
	}
	v, ok := ks.Get("k")
	if !ok || string(v) != "v" {
		t.Fatalf("got (%q, %v), want (\"v\", true)", v, ok)
	}
}

func TestSetXXOnExisting(t *testing.T) {
	ks := newRunning(t)
	ks.Set("k", []byte("v1"), SetOptions{Behaviour: Force})
	res := ks.Set("k", []byte("v2"), SetOptions{Behaviour: OnlyIfExists})
	if !res.Applied {
		t.Fatal("expected XX set on existing key to apply")
	}
	v, _ := ks.Get("k")
	if string(v) != "v2" {
		t.Fatalf("got %q, want v2", v)
	}
}

func TestSetNXOnExistingIsNoop(t *testing.T) {
	ks := newRunning(t)
	ks.Set("k", []byte("v1"), SetOptions{Behaviour: Force})
	res := ks.Set("k", []byte("v2"), SetOptions{Behaviour: OnlyIfNotExists})
	if res.Applied {
		t.Fatal("expected NX set on existing key to be a no-op")
	}
	v, _ := ks.Get("k")
	if string(v) != "v1" {
		t.Fatalf("got %q, want unchanged v1", v)
	}
}

func TestExpiryRemovesKey(t *testing.T) {
	ks := newRunning(t)
	ks.Set("k", []byte("v"), SetOptions{Behaviour: Force, HasExpiry: true, Expiry: 30 * time.Millisecond})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := ks.Get("k"); !ok {
			if ttl := ks.TTLSeconds("k"); ttl != -2 {
				t.Fatalf("TTL after expiry: got %d, want -2", ttl)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected key to expire and disappear")
}

func TestTTLSentinels(t *testing.T) {
	ks := newRunning(t)
	if ttl := ks.TTLSeconds("never-set"); ttl != -2 {
		t.Fatalf("never-set key: got %d, want -2", ttl)
	}
	ks.Set("k", []byte("v"), SetOptions{Behaviour: Force})
	if ttl := ks.TTLSeconds("k"); ttl != -1 {
		t.Fatalf("key without TTL: got %d, want -1", ttl)
	}
	ks.Set("k2", []byte("v"), SetOptions{Behaviour: Force, HasExpiry: true, Expiry: 10 * time.Second})
	if ttl := ks.TTLSeconds("k2"); ttl < 0 {
		t.Fatalf("key with TTL: got %d, want non-negative", ttl)
	}
}

func TestDeleteCountsExisting(t *testing.T) {
	ks := newRunning(t)
	ks.Set("a", []byte("1"), SetOptions{Behaviour: Force})
	ks.Set("b", []byte("2"), SetOptions{Behaviour: Force})
	n := ks.Delete([]string{"a", "b", "missing"})
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	if _, ok := ks.Get("a"); ok {
		t.Fatal("expected a to be gone")
	}
	if _, ok := ks.Get("b"); ok {
		t.Fatal("expected b to be gone")
	}
}

func TestKeepTTLPreservesThenPlainSetClears(t *testing.T) {
	ks := newRunning(t)
	ks.Set("k", []byte("v"), SetOptions{Behaviour: Force, HasExpiry: true, Expiry: 10 * time.Second})
	before := ks.TTLSeconds("k")

	ks.Set("k", []byte("v2"), SetOptions{Behaviour: Force, KeepTTL: true})
	after := ks.TTLSeconds("k")
	if after < 0 || after > before {
		t.Fatalf("KEEPTTL: got %d, want close to %d", after, before)
	}

	ks.Set("k", []byte("v3"), SetOptions{Behaviour: Force})
	if ttl := ks.TTLSeconds("k"); ttl != -1 {
		t.Fatalf("plain SET after KEEPTTL: got %d, want -1 (cleared)", ttl)
	}
}

func TestConcurrentDisjointKeysAllPersist(t *testing.T) {
	ks := newRunning(t)
	const clients = 8
	const perClient = 50

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perClient; j++ {
				key := keyFor(i, j)
				ks.Set(key, []byte("value"), SetOptions{Behaviour: Force})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < clients; i++ {
		for j := 0; j < perClient; j++ {
			if _, ok := ks.Get(keyFor(i, j)); !ok {
				t.Fatalf("missing key %s", keyFor(i, j))
			}
		}
	}
}

func keyFor(i, j int) string {
	return string(rune('a'+i%26)) + "-" + string(rune('A'+j/26)) + string(rune('A'+j%26))
}

func TestKeysGlob(t *testing.T) {
	ks := newRunning(t)
	ks.Set("user:1", []byte("a"), SetOptions{Behaviour: Force})
	ks.Set("user:2", []byte("b"), SetOptions{Behaviour: Force})
	ks.Set("other", []byte("c"), SetOptions{Behaviour: Force})

	got := ks.Keys("user:*")
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %v", len(got), got)
	}
}

func TestExpireBehaviours(t *testing.T) {
	ks := newRunning(t)
	ks.Set("k", []byte("v"), SetOptions{Behaviour: Force})

	if !ks.SetExpire("k", 10*time.Second, OnlyIfNoExpiry) {
		t.Fatal("expected OnlyIfNoExpiry to apply on a key with no TTL")
	}
	if ks.SetExpire("k", 20*time.Second, OnlyIfNoExpiry) {
		t.Fatal("expected OnlyIfNoExpiry to no-op on a key that now has a TTL")
	}
	if !ks.SetExpire("k", 100*time.Second, OnlyIfGreater) {
		t.Fatal("expected OnlyIfGreater to apply when the new TTL is larger")
	}
	if ks.SetExpire("k", 5*time.Second, OnlyIfGreater) {
		t.Fatal("expected OnlyIfGreater to no-op when the new TTL is smaller")
	}
}
