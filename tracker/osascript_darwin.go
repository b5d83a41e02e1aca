//go:build darwin

package tracker

import (
	"context"
	"os/exec"

	"github.com/cockroachdb/errors"

	"promptist/apps"
)

func osascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", errors.WithDetail(errors.Wrap(err, "osascript"), string(exitErr.Stderr))
		}
		return "", errors.Wrap(err, "osascript")
	}
	return string(out), nil
}

// DefaultProbe asks System Events for the frontmost process. Needs the
// Automation permission for System Events.
func DefaultProbe(ctx context.Context) (apps.Frontmost, error) {
	out, err := osascript(ctx, frontmostScript)
	if err != nil {
		return apps.Frontmost{}, err
	}
	return parseProbeOutput(out)
}

func DefaultActivate(ctx context.Context, bundleID string) error {
	_, err := osascript(ctx, activateScript(bundleID))
	return err
}

// DefaultPaste needs the Accessibility permission.
func DefaultPaste(ctx context.Context) error {
	_, err := osascript(ctx, pasteScript)
	return err
}
