// Package remind periodically reports due cards.
package remind

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Default notification window, inclusive local hours.
const (
	DefaultStartHour = 8
	DefaultEndHour   = 22
	DefaultEvery     = time.Hour
)

// Counter counts cards due at a moment.
type Counter interface {
	CountDue(ctx context.Context, now time.Time) (int, error)
}

// Notifier delivers a reminder.
type Notifier interface {
	Notify(ctx context.Context, due int, at time.Time) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, due int, at time.Time) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, due int, at time.Time) error {
	return f(ctx, due, at)
}

// Options controls the schedule.
type Options struct {
	Every     time.Duration
	StartHour int
	EndHour   int
}

// DefaultOptions returns an hourly schedule between 8:00 and 22:59.
func DefaultOptions() Options {
	return Options{Every: DefaultEvery, StartHour: DefaultStartHour, EndHour: DefaultEndHour}
}

// Validate checks the interval and hour window.
func (o Options) Validate() error {
	if o.Every <= 0 {
		return fmt.Errorf("--every must be > 0")
	}
	if o.StartHour < 0 || o.StartHour > 23 || o.EndHour < 0 || o.EndHour > 23 {
		return fmt.Errorf("reminder hours must be between 0 and 23")
	}
	if o.StartHour > o.EndHour {
		return fmt.Errorf("reminder start hour %d is after end hour %d", o.StartHour, o.EndHour)
	}
	return nil
}

// Reminder checks for due cards on a gocron schedule.
type Reminder struct {
	counter  Counter
	notifier Notifier
	opts     Options
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
}

// Option configures a Reminder.
type Option func(*Reminder)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reminder) { r.now = now }
}

// WithLocation sets the zone of the hour window.
func WithLocation(loc *time.Location) Option {
	return func(r *Reminder) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reminder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New validates opts and returns a Reminder.
func New(counter Counter, notifier Notifier, opts Options, options ...Option) (*Reminder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Reminder{
		counter:  counter,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
		loc:      time.Local,
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// InWindow reports whether t falls inside the notification hours.
func (r *Reminder) InWindow(t time.Time) bool {
	hour := t.In(r.loc).Hour()
	return hour >= r.opts.StartHour && hour <= r.opts.EndHour
}

// Check notifies once if cards are due and the hour is in the window.
// It reports whether a notification was sent.
func (r *Reminder) Check(ctx context.Context) (bool, error) {
	now := r.now()
	if !r.InWindow(now) {
		r.logger.Debug("outside reminder hours", "hour", now.In(r.loc).Hour(),
			"start", r.opts.StartHour, "end", r.opts.EndHour)
		return false, nil
	}
	due, err := r.counter.CountDue(ctx, now)
	if err != nil {
		return false, fmt.Errorf("failed to count due cards: %w", err)
	}
	if due == 0 {
		r.logger.Debug("no cards due")
		return false, nil
	}
	if err := r.notifier.Notify(ctx, due, now); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	r.logger.Info("reminder sent", "due", due)
	return true, nil
}

// Run checks immediately and then every opts.Every until ctx is done.
func (r *Reminder) Run(ctx context.Context) error {
	sched := gocron.NewScheduler(r.loc)
	sched.SingletonModeAll()
	if _, err := sched.Every(r.opts.Every).Do(func() {
		if _, err := r.Check(ctx); err != nil {
			r.logger.Error("reminder check failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	sched.StartAsync()
	<-ctx.Done()
	sched.Stop()
	return nil
}
