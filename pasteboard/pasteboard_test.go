package pasteboard

import (
	"testing"

	"github.com/atotto/clipboard"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSystem(t *testing.T, read func() (string, error), write func(string) error) {
	t.Helper()
	origRead, origWrite := clipboardReadAll, clipboardWriteAll
	t.Cleanup(func() {
		clipboardReadAll, clipboardWriteAll = origRead, origWrite
	})
	clipboardReadAll, clipboardWriteAll = read, write
}

func TestSystemUsesClipboard(t *testing.T) {
	var written string
	stubSystem(t,
		func() (string, error) { return "copied", nil },
		func(s string) error { written = s; return nil },
	)

	got, err := System{}.Read()
	require.NoError(t, err)
	assert.Equal(t, "copied", got)

	require.NoError(t, System{}.Write("out"))
	assert.Equal(t, "out", written)
}

func TestSystemWrapsErrors(t *testing.T) {
	boom := errors.New("no xclip")
	stubSystem(t,
		func() (string, error) { return "", boom },
		func(string) error { return boom },
	)

	_, err := System{}.Read()
	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(System{}.Write("x"), boom))
}

func TestMemory(t *testing.T) {
	m := NewMemory("start")
	got, _ := m.Read()
	assert.Equal(t, "start", got)

	require.NoError(t, m.Write("next"))
	got, _ = m.Read()
	assert.Equal(t, "next", got)
}

func TestDefault(t *testing.T) {
	orig := clipboard.Unsupported
	t.Cleanup(func() { clipboard.Unsupported = orig })

	clipboard.Unsupported = false
	stubSystem(t,
		func() (string, error) { return "", nil },
		func(string) error { return nil },
	)
	assert.IsType(t, System{}, Default())

	stubSystem(t,
		func() (string, error) { return "", errors.New("can't open display") },
		func(string) error { return nil },
	)
	assert.IsType(t, &Memory{}, Default())

	clipboard.Unsupported = true
	assert.IsType(t, &Memory{}, Default())
}
