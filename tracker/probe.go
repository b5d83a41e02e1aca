package tracker

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"promptist/apps"
)

// frontmostScript prints the bundle id and name of the frontmost process on
// two lines.
const frontmostScript = `tell application "System Events"
	set p to first application process whose frontmost is true
	return (bundle identifier of p) & linefeed & (name of p)
end tell`

const pasteScript = `tell application "System Events" to keystroke "v" using command down`

func activateScript(bundleID string) string {
	return `tell application id "` + strings.ReplaceAll(bundleID, `"`, "") + `" to activate`
}

// parseProbeOutput reads the frontmostScript output.
func parseProbeOutput(out string) (apps.Frontmost, error) {
	lines := strings.SplitN(strings.TrimRight(out, "\r\n"), "\n", 2)
	bundleID := strings.TrimSpace(lines[0])
	if bundleID == "" || bundleID == "missing value" {
		return apps.Frontmost{}, errors.Newf("unexpected probe output %q", out)
	}
	name := ""
	if len(lines) == 2 {
		name = strings.TrimSpace(lines[1])
	}
	return apps.Identify(bundleID, name), nil
}

// Fake is a scriptable probe, activator and paster. Activate makes the
// activated app frontmost unless Stubborn is set.
type Fake struct {
	mu        sync.Mutex
	front     apps.Frontmost
	Err       error
	Stubborn  int // activations to ignore before obeying
	Activated []string
	Pastes    int
}

func NewFake(f apps.Frontmost) *Fake {
	return &Fake{front: f}
}

// SetFront changes what the probe reports.
func (p *Fake) SetFront(f apps.Frontmost) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.front = f
}

func (p *Fake) Probe(ctx context.Context) (apps.Frontmost, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return apps.Frontmost{}, p.Err
	}
	return p.front, nil
}

func (p *Fake) Activate(ctx context.Context, bundleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Activated = append(p.Activated, bundleID)
	if p.Stubborn > 0 {
		p.Stubborn--
		return nil
	}
	p.front = apps.Identify(bundleID, "")
	return nil
}

func (p *Fake) Paste(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Pastes++
	return nil
}

// Options returns tracker options wired to the fake.
func (p *Fake) Options() Options {
	return Options{Probe: p.Probe, Activate: p.Activate, Paste: p.Paste}
}
