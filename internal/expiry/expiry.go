// Package expiry implements the background expiration agent: a single
// goroutine owning a deadline-ordered delay queue, reached by message
// passing from any number of producers.
package expiry

import (
	"container/heap"
	"time"
)

// Handle is an opaque token identifying an entry's slot in the expiration
// queue. It is never reused: a key re-created after expiring receives a
// fresh Handle.
type Handle struct {
	id uint64
}

// Valid reports whether h refers to an active registration. The zero
// Handle is never valid, matching Entry's "handle present iff expires_at
// present" invariant.
func (h Handle) Valid() bool { return h.id != 0 }

type insertMsg struct {
	key     string
	timeout time.Duration
	reply   chan Handle
}

type resetMsg struct {
	handle  Handle
	timeout time.Duration
}

type removeMsg struct {
	handle Handle
}

// Service is the single long-lived agent that owns the delay queue. Create
// one with New and call Run in its own goroutine.
type Service struct {
	onExpire func(key string, h Handle)

	insertCh chan insertMsg
	resetCh  chan resetMsg
	removeCh chan removeMsg

	queue  itemHeap
	byID   map[uint64]*item
	nextID uint64
}

// New constructs a Service. onExpire is invoked from the agent's own
// goroutine whenever a deadline fires, passing the handle that fired so the
// caller can confirm it still owns that exact registration before acting.
// It must not block on the mailbox channels below (doing so would deadlock
// the agent against itself) — callers that need to touch shared state
// protected by locks the producers might hold should hand the work off to
// another goroutine instead of doing it inline.
func New(onExpire func(key string, h Handle)) *Service {
	return &Service{
		onExpire: onExpire,
		insertCh: make(chan insertMsg),
		resetCh:  make(chan resetMsg),
		removeCh: make(chan removeMsg),
		byID:     make(map[uint64]*item),
	}
}

// Insert schedules key to expire after timeout and returns its handle.
// Safe to call concurrently from any number of goroutines.
func (s *Service) Insert(key string, timeout time.Duration) Handle {
	reply := make(chan Handle, 1)
	s.insertCh <- insertMsg{key: key, timeout: timeout, reply: reply}
	return <-reply
}

// Reset rewrites the deadline of an existing handle in place.
func (s *Service) Reset(h Handle, timeout time.Duration) {
	if !h.Valid() {
		return
	}
	s.resetCh <- resetMsg{handle: h, timeout: timeout}
}

// Remove cancels a handle. A Remove for a handle whose deadline has already
// fired (and whose onExpire has already run) is a no-op.
func (s *Service) Remove(h Handle) {
	if !h.Valid() {
		return
	}
	s.removeCh <- removeMsg{handle: h}
}

// Run drives the agent loop until ctx-equivalent shutdown: callers run this
// in its own goroutine for the lifetime of the process. The select is
// gated on whether the queue is non-empty, so an empty queue never
// busy-resolves on a nil/expired timer.
func (s *Service) Run(stop <-chan struct{}) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	armTimer := func() {
		if timerActive {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timerActive = false
		}
		if len(s.queue) == 0 {
			return
		}
		d := time.Until(s.queue[0].deadline)
		if d < 0 {
			d = 0
		}
		timer.Reset(d)
		timerActive = true
	}

	armTimer()
	for {
		var timerC <-chan time.Time
		if timerActive {
			timerC = timer.C
		}

		select {
		case <-stop:
			return

		case <-timerC:
			timerActive = false
			now := time.Now()
			for len(s.queue) > 0 && !s.queue[0].deadline.After(now) {
				it := heap.Pop(&s.queue).(*item)
				delete(s.byID, it.id)
				s.onExpire(it.key, Handle{id: it.id})
			}
			armTimer()

		case m := <-s.insertCh:
			s.nextID++
			id := s.nextID
			it := &item{id: id, key: m.key, deadline: time.Now().Add(m.timeout)}
			s.byID[id] = it
			heap.Push(&s.queue, it)
			m.reply <- Handle{id: id}
			armTimer()

		case m := <-s.resetCh:
			it, ok := s.byID[m.handle.id]
			if !ok {
				continue
			}
			it.deadline = time.Now().Add(m.timeout)
			heap.Fix(&s.queue, it.index)
			armTimer()

		case m := <-s.removeCh:
			it, ok := s.byID[m.handle.id]
			if !ok {
				continue
			}
			heap.Remove(&s.queue, it.index)
			delete(s.byID, it.id)
			armTimer()
		}
	}
}

type item struct {
	id       uint64
	key      string
	deadline time.Time
	index    int
}

type itemHeap []*item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *itemHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
