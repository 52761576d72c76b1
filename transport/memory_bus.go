package transport

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
)

// MemoryBus is an in-process Transport. Every Broadcast is fanned out to
// all subscribers of the topic, each handler running on its own goroutine
// with a private copy of the packet. It stands in for a real network in
// tests and demos.
type MemoryBus struct {
	subs   *xsync.MapOf[uint64, subscription]
	nextID atomic.Uint64
	counts *xsync.MapOf[Topic, *atomic.Int64]

	// closeMu orders inflight.Add in Broadcast against Close.
	closeMu sync.RWMutex
	closed  bool

	failMu        sync.Mutex
	failRemaining int
	failErr       error

	inflight sync.WaitGroup
}

type subscription struct {
	topic   Topic
	handler Handler
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs:   xsync.NewMapOf[uint64, subscription](),
		counts: xsync.NewMapOf[Topic, *atomic.Int64](),
	}
}

// Broadcast delivers data to every subscriber of topic.
func (b *MemoryBus) Broadcast(ctx context.Context, topic Topic, data []byte) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.injectedFailure(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Broadcast",
			"topic":    topic,
			"error":    err.Error(),
		}).Debug("Injected transport failure")
		return err
	}

	counter, _ := b.counts.LoadOrCompute(topic, func() *atomic.Int64 { return new(atomic.Int64) })
	counter.Add(1)

	b.subs.Range(func(_ uint64, s subscription) bool {
		if s.topic != topic {
			return true
		}
		buf := make([]byte, len(data))
		copy(buf, data)

		b.inflight.Add(1)
		go func(h Handler) {
			defer b.inflight.Done()
			h(buf)
		}(s.handler)
		return true
	})
	return nil
}

// Subscribe registers handler for topic.
func (b *MemoryBus) Subscribe(topic Topic, handler Handler) func() {
	id := b.nextID.Add(1)
	b.subs.Store(id, subscription{topic: topic, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.subs.Delete(id) })
	}
}

// FailNext makes the next n broadcasts return err without delivering.
func (b *MemoryBus) FailNext(n int, err error) {
	b.failMu.Lock()
	defer b.failMu.Unlock()
	b.failRemaining = n
	b.failErr = err
}

func (b *MemoryBus) injectedFailure() error {
	b.failMu.Lock()
	defer b.failMu.Unlock()
	if b.failRemaining <= 0 {
		return nil
	}
	b.failRemaining--
	return b.failErr
}

// PacketCount returns how many packets were accepted on topic.
func (b *MemoryBus) PacketCount(topic Topic) int64 {
	counter, ok := b.counts.Load(topic)
	if !ok {
		return 0
	}
	return counter.Load()
}

// Subscribers returns the number of live subscriptions across all topics.
func (b *MemoryBus) Subscribers() int {
	return b.subs.Size()
}

// Close rejects further broadcasts and waits for in-flight handlers.
func (b *MemoryBus) Close() error {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return nil
	}
	b.closed = true
	b.closeMu.Unlock()

	b.inflight.Wait()
	b.subs.Clear()
	return nil
}
