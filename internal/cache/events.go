package cache

import (
	"fmt"

	"github.com/go-kit/log/level"
)

// EventKind identifies what happened to a key.
type EventKind int

const (
	EventInsert EventKind = iota + 1
	EventHit
	EventMiss
	EventEviction
)

func (k EventKind) String() string {
	switch k {
	case EventInsert:
		return "insert"
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventEviction:
		return "eviction"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to listeners. Value is set for insert and hit events
// and is the zero value otherwise.
type Event[V any] struct {
	Kind  EventKind
	Key   string
	Value V
}

// EventListener is called synchronously on the goroutine that triggered the
// event, after the mutation has been applied and the cache lock released.
type EventListener[V any] func(Event[V])

// AddEventListener registers fn for every insert, hit, miss and eviction.
func (c *Cache[V]) AddEventListener(fn EventListener[V]) {
	if fn == nil {
		return
	}

	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	// Copy on write so emit can iterate without holding the lock.
	next := make([]EventListener[V], len(c.listeners), len(c.listeners)+1)
	copy(next, c.listeners)
	c.listeners = append(next, fn)
}

func (c *Cache[V]) emit(events ...Event[V]) {
	if len(events) == 0 {
		return
	}

	c.listenersMu.RLock()
	listeners := c.listeners
	c.listenersMu.RUnlock()

	for _, ev := range events {
		for _, fn := range listeners {
			c.notify(fn, ev)
		}
	}
}

// notify runs one listener; a panic is logged and does not reach the caller.
func (c *Cache[V]) notify(fn EventListener[V], ev Event[V]) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(c.logger).Log("msg", "event listener panicked", "event", ev.Kind, "key", ev.Key, "err", fmt.Sprint(r))
		}
	}()
	fn(ev)
}
