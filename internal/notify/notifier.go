// Package notify implements the portal's best-effort outbound side effects:
// Slack webhook notices and SMTP mail. Deliveries run on a small fixed pool
// so they never block a request, and every delivery result is captured as an
// Outcome on an internal channel that is drained into the log. Callers fire
// and forget; a failed notification never fails the action that caused it.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Mail is an email to deliver alongside (or instead of) a webhook notice.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Notification is one fire-and-forget event. Text feeds the webhook sender;
// Mail, when non-nil, feeds the mailer.
type Notification struct {
	Kind string
	Text string
	Mail *Mail
}

// Outcome records what one sender did with one notification.
type Outcome struct {
	Sender string
	Kind   string
	Err    error
}

// Sender delivers notifications to one destination. Senders are expected to
// treat "not configured" as a silent success.
type Sender interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Notifier fans notifications out to its senders on worker goroutines.
type Notifier struct {
	log      *zap.Logger
	senders  []Sender
	workers  int
	queue    chan Notification
	outcomes chan Outcome
	done     chan struct{}
	timeout  time.Duration
}

// New builds a notifier with the given senders. workers and buffer bound the
// delivery pool; Start must be called before Enqueue has any effect.
func New(log *zap.Logger, workers, buffer int, senders ...Sender) *Notifier {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier{
		log:      log,
		senders:  senders,
		workers:  workers,
		queue:    make(chan Notification, buffer),
		outcomes: make(chan Outcome, buffer*2),
		done:     make(chan struct{}),
		timeout:  10 * time.Second,
	}
}

// Start launches the worker pool and the outcome drain.
func (n *Notifier) Start() {
	for i := 0; i < n.workers; i++ {
		go n.worker()
	}
	go n.drainOutcomes()
}

// Enqueue hands a notification to the pool without ever blocking the
// caller. When the queue is saturated the notification is dropped and the
// drop is logged, which is the documented best-effort contract.
func (n *Notifier) Enqueue(notification Notification) {
	select {
	case n.queue <- notification:
	default:
		n.log.Warn("notification dropped, queue full", zap.String("kind", notification.Kind))
	}
}

// Close stops accepting work and lets in-flight deliveries finish.
func (n *Notifier) Close() {
	close(n.done)
}

func (n *Notifier) worker() {
	for {
		select {
		case <-n.done:
			return
		case notification := <-n.queue:
			for _, s := range n.senders {
				ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
				err := s.Send(ctx, notification)
				cancel()
				n.report(Outcome{Sender: s.Name(), Kind: notification.Kind, Err: err})
			}
		}
	}
}

func (n *Notifier) report(o Outcome) {
	select {
	case n.outcomes <- o:
	default:
		// Outcome channel full; log directly rather than block a worker.
		n.logOutcome(o)
	}
}

func (n *Notifier) drainOutcomes() {
	for {
		select {
		case <-n.done:
			return
		case o := <-n.outcomes:
			n.logOutcome(o)
		}
	}
}

func (n *Notifier) logOutcome(o Outcome) {
	if o.Err != nil {
		n.log.Warn("notification delivery failed",
			zap.String("sender", o.Sender), zap.String("kind", o.Kind), zap.Error(o.Err))
		return
	}
	n.log.Debug("notification delivered",
		zap.String("sender", o.Sender), zap.String("kind", o.Kind))
}
