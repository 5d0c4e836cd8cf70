package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Kind is the flavour of a user-facing notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single toast-style message
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier is the notification surface consumed by services
type Notifier interface {
	Notify(kind Kind, message string)
}

// Collector gathers the notifications raised while handling one request
// and mirrors them to the logger.
type Collector struct {
	mu     sync.Mutex
	items  []Notification
	logger *zap.Logger
}

// NewCollector creates a collector. A nil logger disables log mirroring.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Notify records a notification
func (c *Collector) Notify(kind Kind, message string) {
	c.mu.Lock()
	c.items = append(c.items, Notification{Kind: kind, Message: message})
	c.mu.Unlock()

	if kind == KindError {
		c.logger.Warn("notification", zap.String("kind", string(kind)), zap.String("message", message))
		return
	}
	c.logger.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
}

// Items returns a copy of the recorded notifications
func (c *Collector) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

type ctxKey struct{}

// WithNotifier attaches a notifier to the context
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// FromContext returns the notifier in ctx, or a no-op notifier
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(ctxKey{}).(Notifier); ok && n != nil {
		return n
	}
	return nopNotifier{}
}

// Success raises a success notification on the notifier in ctx
func Success(ctx context.Context, message string) {
	FromContext(ctx).Notify(KindSuccess, message)
}

// Error raises an error notification on the notifier in ctx
func Error(ctx context.Context, message string) {
	FromContext(ctx).Notify(KindError, message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Kind, string) {}
