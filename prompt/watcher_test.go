package prompt_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptist/prompt"
)

func TestWatcherReloadsExternalEdit(t *testing.T) {
	m, path := newManager(t)
	w, err := prompt.NewWatcher(m, 20*time.Millisecond)
	require.NoError(t, err)

	var reloads atomic.Int32
	w.OnReload(func() { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"ext","title":"From editor","content":""}]`), 0o644))

	require.Eventually(t, func() bool {
		_, err := m.Get("ext")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestWatcherIgnoresOwnWrites(t *testing.T) {
	m, _ := newManager(t)
	w, err := prompt.NewWatcher(m, 20*time.Millisecond)
	require.NoError(t, err)

	var reloads atomic.Int32
	w.OnReload(func() { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	_, err = m.Create(prompt.Template{Title: "Mine"})
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(0), reloads.Load())
	assert.Len(t, m.List(), 1)
}
