// Package notifier delivers complaint notifications by email with bounded
// retry. Delivery failures never escape Send; callers only see a boolean.
package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxAttempts is how many times a message is tried before giving up.
	DefaultMaxAttempts = 3
	// DefaultAttemptTimeout bounds one attempt, including the wait for a connection slot.
	DefaultAttemptTimeout = 15 * time.Second
)

// Message is a two-part email. HTML is synthesized from Text when empty.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers one message and returns its message id.
type Transport interface {
	Configured() bool
	Send(ctx context.Context, msg Message) (string, error)
}

// Dispatcher sends messages over a Transport, retrying with exponential
// backoff. Outbound connections are bounded and rate limited so a burst of
// status updates does not trip provider throttling.
type Dispatcher struct {
	transport      Transport
	maxAttempts    int
	attemptTimeout time.Duration
	backoff        func(attempt int) time.Duration
	sleep          func(time.Duration)
	conns          *semaphore.Weighted
	limiter        *rate.Limiter
}

type Option func(*Dispatcher)

// WithMaxConnections bounds concurrent transport sends. Values below 1 mean 1.
func WithMaxConnections(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.conns = semaphore.NewWeighted(int64(n))
	}
}

// WithRateLimit caps transport sends per second. Zero or less disables the cap.
func WithRateLimit(perSecond int) Option {
	return func(d *Dispatcher) {
		if perSecond <= 0 {
			d.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithAttemptTimeout sets the deadline of each attempt. Values below or equal to zero keep the default.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.attemptTimeout = timeout
		}
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

func NewDispatcher(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport:      transport,
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		backoff:        ExponentialBackoff,
		sleep:          time.Sleep,
		conns:          semaphore.NewWeighted(1),
		limiter:        rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ExponentialBackoff waits 2^attempt seconds after the given failed attempt.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Send reports whether msg was delivered. It returns false without touching
// the transport when credentials or the recipient are missing. Cancellation of
// ctx is ignored: every attempt runs under its own timeout.
func (d *Dispatcher) Send(ctx context.Context, msg Message) bool {
	ctx = context.WithoutCancel(ctx)

	if d.transport == nil || !d.transport.Configured() {
		log.Println("Email transport credentials not configured (EMAIL_USER/EMAIL_PASS)")
		return false
	}

	msg.To = strings.TrimSpace(msg.To)
	if msg.To == "" {
		log.Println("No recipient email provided")
		return false
	}

	if strings.TrimSpace(msg.HTML) == "" {
		msg.HTML = RenderHTML(msg.Text)
	}

	log.Printf("Preparing to send email to: %s", msg.To)

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		log.Printf("Attempt %d/%d to send email...", attempt, d.maxAttempts)

		messageID, err := d.attempt(ctx, msg)
		if err == nil {
			log.Printf("Email sent successfully to %s: %s", msg.To, messageID)
			return true
		}

		log.Printf("Attempt %d failed: %v", attempt, err)
		if attempt < d.maxAttempts {
			wait := d.backoff(attempt)
			log.Printf("Retrying in %s...", wait)
			d.sleep(wait)
		}
	}

	log.Printf("Error sending email to %s: all %d attempts failed", msg.To, d.maxAttempts)
	return false
}

// attempt makes one delivery try. A panicking transport counts as a failed attempt.
func (d *Dispatcher) attempt(parent context.Context, msg Message) (messageID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, d.attemptTimeout)
	defer cancel()

	if err := d.conns.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer d.conns.Release(1)

	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return d.transport.Send(ctx, msg)
}
