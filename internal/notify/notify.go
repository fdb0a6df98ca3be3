// Package notify carries user-facing notifications from the service layer to
// whatever surface is serving the request.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level   Level
	Message string
}

func Success(msg string) Notification { return Notification{Level: LevelSuccess, Message: msg} }

// Notifier displays a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Collector buffers the notifications raised while serving one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Add(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Drain returns the buffered notifications and empties the collector.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}

type collectorKey struct{}

// NewContext returns a context carrying a fresh collector.
func NewContext(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func FromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// ContextNotifier hands notifications to the request's collector. Outside a
// request (workers, tests) the notification is only logged.
type ContextNotifier struct {
	Logger *slog.Logger
}

func (n ContextNotifier) Notify(ctx context.Context, note Notification) {
	if c, ok := FromContext(ctx); ok {
		c.Add(note)
		return
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification", "level", string(note.Level), "message", note.Message)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, n Notification)

func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }
