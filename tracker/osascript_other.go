//go:build !darwin

package tracker

import (
	"context"

	"promptist/apps"
)

func DefaultProbe(ctx context.Context) (apps.Frontmost, error) {
	return apps.Frontmost{}, ErrUnsupported
}

func DefaultActivate(ctx context.Context, bundleID string) error {
	return ErrUnsupported
}

func DefaultPaste(ctx context.Context) error {
	return ErrUnsupported
}
