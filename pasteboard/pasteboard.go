// Package pasteboard reads and writes clipboard text.
package pasteboard

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/cockroachdb/errors"
)

// Board is a text clipboard.
type Board interface {
	Read() (string, error)
	Write(text string) error
}

// Package-level so tests can stub the system clipboard.
var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

// System is the OS clipboard (pbcopy/pbpaste on macOS, xclip/xsel or
// wl-clipboard on Linux).
type System struct{}

// Available reports whether a clipboard utility was found.
func (System) Available() bool {
	return !clipboard.Unsupported
}

func (System) Read() (string, error) {
	s, err := clipboardReadAll()
	if err != nil {
		return "", errors.Wrap(err, "read clipboard")
	}
	return s, nil
}

func (System) Write(text string) error {
	return errors.Wrap(clipboardWriteAll(text), "write clipboard")
}

// Memory is an in-process board for headless runs and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

func NewMemory(initial string) *Memory {
	return &Memory{text: initial}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Default returns the system board when a clipboard utility is present and
// readable, and an in-memory board otherwise (e.g. xclip without a display).
func Default() Board {
	s := System{}
	if s.Available() {
		if _, err := s.Read(); err == nil {
			return s
		}
	}
	return NewMemory("")
}
