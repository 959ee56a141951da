package workflow

import (
	"sync"
	"time"
)

// Notification is a transient user-facing message
type Notification struct {
	Message string
	Kind    NotificationKind
	At      time.Time
}

// NotificationKind distinguishes informational messages from error banners
type NotificationKind string

const (
	NotifyInfo  NotificationKind = "info"
	NotifyError NotificationKind = "error"
)

// Notifier holds the current transient notification. Notifications dismiss
// themselves after a TTL regardless of workflow state; errors stay until
// explicitly cleared or replaced.
type Notifier struct {
	mu      sync.Mutex
	current *Notification
	ttl     time.Duration
	timer   *time.Timer

	subscribers []func(Notification)
}

// NewNotifier creates a notifier whose info messages auto-dismiss after ttl
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Notifier{ttl: ttl}
}

// Subscribe registers a callback invoked for every published notification
func (n *Notifier) Subscribe(fn func(Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, fn)
}

// Info publishes a transient message that dismisses itself after the TTL
func (n *Notifier) Info(message string) {
	n.publish(Notification{Message: message, Kind: NotifyInfo, At: time.Now()}, true)
}

// Error publishes an error banner that stays until cleared or replaced
func (n *Notifier) Error(message string) {
	n.publish(Notification{Message: message, Kind: NotifyError, At: time.Now()}, false)
}

func (n *Notifier) publish(note Notification, autoDismiss bool) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = &note
	if autoDismiss {
		n.timer = time.AfterFunc(n.ttl, func() { n.dismiss(note.At) })
	}
	subscribers := make([]func(Notification), len(n.subscribers))
	copy(subscribers, n.subscribers)
	n.mu.Unlock()

	for _, fn := range subscribers {
		fn(note)
	}
}

// dismiss clears the current notification only if it is still the one the
// timer was armed for
func (n *Notifier) dismiss(at time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.At.Equal(at) {
		n.current = nil
		n.timer = nil
	}
}

// Clear dismisses whatever notification is showing
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}

// Current returns the notification currently showing, if any
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	note := *n.current
	return &note
}
