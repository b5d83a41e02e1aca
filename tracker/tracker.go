package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"promptist/apps"
	"promptist/logger"
)

// Probe reports the frontmost application.
type Probe func(ctx context.Context) (apps.Frontmost, error)

// Activator brings the application with bundleID to the front.
type Activator func(ctx context.Context, bundleID string) error

// Paster sends a paste keystroke to the frontmost application.
type Paster func(ctx context.Context) error

var (
	ErrUnsupported   = errors.New("frontmost app detection is not supported on this platform")
	ErrNotFrontmost  = errors.New("application did not come to the front")
	ErrNoPreviousApp = errors.New("no previous application to return to")
)

// Options configures a Tracker. Nil funcs fall back to the platform
// implementations.
type Options struct {
	Probe    Probe
	Activate Activator
	Paste    Paster

	// Interval between polls in Run.
	Interval time.Duration
	// IgnoreBundleIDs are apps that never become the previous app, such as
	// the browser or terminal hosting the launcher.
	IgnoreBundleIDs []string
	// FocusAttempts and FocusDelay bound Refocus retries.
	FocusAttempts uint
	FocusDelay    time.Duration
}

// Tracker follows the frontmost application and remembers the last one that
// is not the launcher itself.
type Tracker struct {
	mu       sync.RWMutex
	current  apps.Frontmost
	previous apps.Frontmost
	subs     map[chan apps.Frontmost]struct{}
	lastErr  string

	opts   Options
	ignore map[string]bool
}

func New(opts Options) *Tracker {
	if opts.Probe == nil {
		opts.Probe = DefaultProbe
	}
	if opts.Activate == nil {
		opts.Activate = DefaultActivate
	}
	if opts.Paste == nil {
		opts.Paste = DefaultPaste
	}
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.FocusAttempts == 0 {
		opts.FocusAttempts = 5
	}
	if opts.FocusDelay <= 0 {
		opts.FocusDelay = 100 * time.Millisecond
	}
	ignore := make(map[string]bool, len(opts.IgnoreBundleIDs))
	for _, id := range opts.IgnoreBundleIDs {
		ignore[id] = true
	}
	return &Tracker{
		subs:   make(map[chan apps.Frontmost]struct{}),
		opts:   opts,
		ignore: ignore,
	}
}

// Current returns the frontmost app as of the last poll.
func (t *Tracker) Current() apps.Frontmost {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Previous returns the last frontmost app outside the ignore list. This is
// the app a resolved prompt is pasted into.
func (t *Tracker) Previous() apps.Frontmost {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.previous
}

// Set records f as frontmost without probing, for platforms without a probe
// or for clients that know better.
func (t *Tracker) Set(f apps.Frontmost) bool {
	return t.update(apps.Identify(f.BundleID, f.Name))
}

// Poll probes once and records the result. Probe failures leave the
// recorded context unchanged.
func (t *Tracker) Poll(ctx context.Context) (bool, error) {
	f, err := t.opts.Probe(ctx)
	if err != nil {
		t.noteErr(err)
		return false, err
	}
	t.noteErr(nil)
	return t.update(f), nil
}

// Run polls every Interval until ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for {
		_, _ = t.Poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// noteErr logs a probe error once per distinct message.
func (t *Tracker) noteErr(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.mu.Lock()
	changed := msg != t.lastErr
	t.lastErr = msg
	t.mu.Unlock()
	if changed && err != nil {
		logger.Logger.Warnw("Frontmost app probe failed", "error", err)
	}
}

func (t *Tracker) update(f apps.Frontmost) bool {
	if f.IsZero() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if f == t.current {
		return false
	}
	t.current = f
	if !t.ignore[f.BundleID] {
		t.previous = f
	}
	// Non-blocking sends under the lock: cancel cannot close a channel
	// mid-send.
	for ch := range t.subs {
		select {
		case ch <- f:
		default:
		}
	}
	logger.Logger.Debugw("Frontmost app changed", "bundle_id", f.BundleID, "name", f.Name, "tracked", f.Tracked)
	return true
}

// Subscribe returns a channel receiving every change of frontmost app and a
// cancel func that closes it. Slow readers miss updates rather than block
// the tracker.
func (t *Tracker) Subscribe() (<-chan apps.Frontmost, func()) {
	ch := make(chan apps.Frontmost, 8)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, ch)
			t.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Refocus activates bundleID and waits until a probe confirms it is
// frontmost, retrying FocusAttempts times FocusDelay apart.
func (t *Tracker) Refocus(ctx context.Context, bundleID string) error {
	if bundleID == "" {
		return ErrNoPreviousApp
	}
	var got apps.Frontmost
	err := retry.Do(
		func() error {
			if err := t.opts.Activate(ctx, bundleID); err != nil {
				return err
			}
			f, err := t.opts.Probe(ctx)
			if err != nil {
				return err
			}
			if f.BundleID != bundleID {
				return errors.Wrapf(ErrNotFrontmost, "%s is frontmost, want %s", f.BundleID, bundleID)
			}
			got = f
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(t.opts.FocusAttempts),
		retry.Delay(t.opts.FocusDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, ErrUnsupported) }),
	)
	if err != nil {
		return errors.Wrapf(err, "refocus %s", bundleID)
	}
	t.update(got)
	return nil
}

// PasteIntoPrevious returns focus to the previous app and pastes.
func (t *Tracker) PasteIntoPrevious(ctx context.Context) (apps.Frontmost, error) {
	prev := t.Previous()
	if err := t.Refocus(ctx, prev.BundleID); err != nil {
		return prev, err
	}
	return prev, errors.Wrap(t.opts.Paste(ctx), "paste")
}
