package cache

import (
	"fmt"
	"time"
)

// OpKind identifies a traced operation.
type OpKind int

const (
	OpPut OpKind = iota + 1
	OpGet
	OpDelete
	OpClear
	OpEvict
	OpExpire // lazy expiry found by Get
	OpSweep
)

func (k OpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpGet:
		return "get"
	case OpDelete:
		return "delete"
	case OpClear:
		return "clear"
	case OpEvict:
		return "evict"
	case OpExpire:
		return "expire"
	case OpSweep:
		return "sweep"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Operation is one entry of the trace log. Key is empty for OpClear and
// OpSweep, which report the number of entries dropped in Removed.
type Operation struct {
	Kind     OpKind
	Key      string
	Priority int
	Hit      bool
	Removed  int
	At       time.Time
}

// traceLog is a fixed-size ring of recent operations. A nil *traceLog
// records nothing.
type traceLog struct {
	buf  []Operation
	next int
	full bool
}

func newTraceLog(capacity int) *traceLog {
	if capacity <= 0 {
		return nil
	}
	return &traceLog{buf: make([]Operation, capacity)}
}

func (t *traceLog) record(op Operation) {
	if t == nil {
		return
	}
	t.buf[t.next] = op
	t.next = (t.next + 1) % len(t.buf)
	if t.next == 0 {
		t.full = true
	}
}

// snapshot returns the recorded operations, oldest first.
func (t *traceLog) snapshot() []Operation {
	if t == nil {
		return nil
	}
	if !t.full {
		return append([]Operation(nil), t.buf[:t.next]...)
	}
	out := make([]Operation, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Trace returns the most recent operations, oldest first. It returns nil
// when Config.TraceCapacity is zero.
func (c *Cache[V]) Trace() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trace.snapshot()
}
