// Package launcher turns a template selection into clipboard text for the
// application the user came from.
package launcher

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sahilm/fuzzy"

	"promptist/apps"
	"promptist/logger"
	"promptist/pasteboard"
	"promptist/prompt"
	"promptist/resolve"
	"promptist/shortcut"
	"promptist/tracker"
)

var ErrNoShortcut = errors.New("no template bound to shortcut")

// Config holds launcher behavior switches.
type Config struct {
	// AutoPaste returns focus to the previous app and pastes after copying.
	AutoPaste bool
	// Formats are the date layouts used by the resolver.
	Formats resolve.Formats
}

// Launcher wires the store, tracker, resolver and clipboard together.
type Launcher struct {
	store   *prompt.Manager
	tracker *tracker.Tracker
	board   pasteboard.Board
	now     func() time.Time

	mu  sync.RWMutex
	cfg Config
}

func New(store *prompt.Manager, tr *tracker.Tracker, board pasteboard.Board, cfg Config) *Launcher {
	return &Launcher{store: store, tracker: tr, board: board, now: time.Now, cfg: cfg}
}

// SetConfig swaps the configuration, e.g. after a config file reload.
func (l *Launcher) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
}

func (l *Launcher) config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// SetClock overrides the time used for date placeholders.
func (l *Launcher) SetClock(now func() time.Time) {
	l.now = now
}

// Context is the app the launcher currently targets.
func (l *Launcher) Context() apps.Frontmost {
	return l.tracker.Previous()
}

// Candidates lists templates for the current app matching query, best first.
func (l *Launcher) Candidates(query string) []prompt.Template {
	f := prompt.Filter{IncludeUnlinked: true}
	if ctx := l.Context(); !ctx.IsZero() {
		f.App = &ctx
	}
	pool := l.store.Filter(f)
	return Rank(pool, query)
}

// Rank orders templates for display. Without a query the list order is kept.
// Substring hits come first: title hits, then by usage, then list order.
// With no substring hit at all, titles are fuzzy matched instead.
func Rank(pool []prompt.Template, query string) []prompt.Template {
	q := strings.TrimSpace(query)
	if q == "" {
		return pool
	}

	var hits []prompt.Template
	for _, t := range pool {
		if prompt.MatchesQuery(t, q) {
			hits = append(hits, t)
		}
	}
	if len(hits) > 0 {
		lq := strings.ToLower(q)
		titleHit := func(t prompt.Template) bool { return strings.Contains(strings.ToLower(t.Title), lq) }
		sort.SliceStable(hits, func(i, j int) bool {
			ti, tj := titleHit(hits[i]), titleHit(hits[j])
			if ti != tj {
				return ti
			}
			return hits[i].UsageCount > hits[j].UsageCount
		})
		return hits
	}

	matches := fuzzy.FindFrom(q, titleSource(pool))
	out := make([]prompt.Template, 0, len(matches))
	for _, m := range matches {
		out = append(out, pool[m.Index])
	}
	return out
}

type titleSource []prompt.Template

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// Questions lists the input prompts the user must answer for id.
func (l *Launcher) Questions(id string) ([]string, error) {
	t, err := l.store.Get(id)
	if err != nil {
		return nil, err
	}
	return resolve.Questions(t.Content), nil
}

// Result is the outcome of running a template.
type Result struct {
	Template prompt.Template `json:"template"`
	Text     string          `json:"text"`
	Target   apps.Frontmost  `json:"target"`
	Pasted   bool            `json:"pasted"`
}

// Preview resolves id without touching the clipboard or usage stats.
func (l *Launcher) Preview(id string, answers map[string]string) (string, error) {
	t, err := l.store.Get(id)
	if err != nil {
		return "", err
	}
	rc, err := l.resolutionContext(t, answers)
	if err != nil {
		return "", err
	}
	return l.config().Formats.Resolve(t.Content, rc), nil
}

// Run resolves id, copies the result, records the use and, with AutoPaste,
// pastes into the previous app. A paste failure is logged, not returned:
// the text is already on the clipboard.
func (l *Launcher) Run(ctx context.Context, id string, answers map[string]string) (Result, error) {
	t, err := l.store.Get(id)
	if err != nil {
		return Result{}, err
	}
	rc, err := l.resolutionContext(t, answers)
	if err != nil {
		return Result{}, err
	}
	cfg := l.config()
	text := cfg.Formats.Resolve(t.Content, rc)

	if err := l.board.Write(text); err != nil {
		return Result{}, err
	}
	used, err := l.store.MarkUsed(id)
	if err != nil {
		return Result{}, errors.Wrap(err, "record template use")
	}

	res := Result{Template: used, Text: text, Target: l.Context()}
	if cfg.AutoPaste {
		target, err := l.tracker.PasteIntoPrevious(ctx)
		res.Target = target
		if err != nil {
			logger.Logger.Warnw("Auto-paste failed, text left on clipboard", "template", t.Title, "error", err)
		} else {
			res.Pasted = true
		}
	}
	logger.Logger.Infow("Template copied", "template", t.Title, "target", res.Target.Name, "pasted", res.Pasted)
	return res, nil
}

// Trigger runs the template bound to combo in the current app.
func (l *Launcher) Trigger(ctx context.Context, combo shortcut.Combo) (Result, error) {
	entry, ok := l.Registry().Lookup(combo, l.Context())
	if !ok {
		return Result{}, errors.Wrapf(ErrNoShortcut, "%s", combo)
	}
	return l.Run(ctx, entry.TemplateID, nil)
}

// Registry builds the shortcut registry from the stored templates.
func (l *Launcher) Registry() *shortcut.Registry {
	r := shortcut.NewRegistry()
	for _, t := range l.store.List() {
		if t.Shortcut == nil {
			continue
		}
		if err := r.Register(t.ID, *t.Shortcut); err != nil {
			logger.Logger.Warnw("Skipping conflicting shortcut", "template", t.Title, "error", err)
		}
	}
	return r
}

func (l *Launcher) resolutionContext(t prompt.Template, answers map[string]string) (resolve.Context, error) {
	rc := resolve.Context{Inputs: answers, Now: l.now()}
	if resolve.NeedsClipboard(t.Content) {
		sel, err := l.board.Read()
		if err != nil {
			return resolve.Context{}, err
		}
		rc.ClipboardSelection = &sel
	}
	return rc, nil
}
