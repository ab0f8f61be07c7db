// Package notify keeps a stack of transient user-facing messages with
// per-message auto-dismiss timers.
package notify

import (
	"html"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultDuration is how long a message stays visible when the caller does
// not pick a duration.
const DefaultDuration = 5000 * time.Millisecond

// Notification is one visible message. Message is raw text; use HTML() when
// rendering into markup.
type Notification struct {
	ID      int64
	Level   Level
	Message string
}

// HTML returns the message with markup escaped, so a message that happens to
// contain tags renders as text.
func (n Notification) HTML() string {
	return html.EscapeString(n.Message)
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Center holds the active notification stack. Each message times out on its
// own; dismissing one never touches the others. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	nextID   int64
	order    []int64
	items    map[int64]*entry
	onChange func([]Notification)
	closed   bool
}

// New creates a Center. onChange, when non-nil, is called with the current
// stack after every push or dismissal.
func New(onChange func([]Notification)) *Center {
	return &Center{
		items:    make(map[int64]*entry),
		onChange: onChange,
	}
}

// Push adds a message with the default duration and returns its id.
func (c *Center) Push(level Level, message string) int64 {
	return c.PushWithDuration(level, message, DefaultDuration)
}

// PushWithDuration adds a message that auto-dismisses after d. A duration of
// zero or less pins the message until it is dismissed explicitly.
func (c *Center) PushWithDuration(level Level, message string, d time.Duration) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}
	c.nextID++
	id := c.nextID
	e := &entry{n: Notification{ID: id, Level: level, Message: message}}
	if d > 0 {
		e.timer = time.AfterFunc(d, func() { c.Dismiss(id) })
	}
	c.items[id] = e
	c.order = append(c.order, id)
	c.notifyLocked()
	return id
}

func (c *Center) Success(message string) int64 { return c.Push(LevelSuccess, message) }
func (c *Center) Error(message string) int64   { return c.Push(LevelError, message) }
func (c *Center) Warning(message string) int64 { return c.Push(LevelWarning, message) }
func (c *Center) Info(message string) int64    { return c.Push(LevelInfo, message) }

// Dismiss removes one message. Dismissing an unknown or already-removed id
// is a no-op.
func (c *Center) Dismiss(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[id]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.notifyLocked()
}

// Active returns the visible messages in push order.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops all timers and drops every message. The Center accepts no
// pushes afterwards.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, e := range c.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	c.items = make(map[int64]*entry)
	c.order = nil
}

func (c *Center) snapshotLocked() []Notification {
	out := make([]Notification, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].n)
	}
	return out
}

func (c *Center) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}
