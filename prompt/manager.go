package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"promptist/logger"
)

// Manager owns the template list and its backing file. Every mutation
// rewrites the whole file.
type Manager struct {
	mu        sync.RWMutex
	filePath  string
	templates []Template // insertion order
	now       func() time.Time
	onWrite   func()
}

// NewManager loads templates from filePath, or starts empty if the file does
// not exist. Returns an error only on unexpected I/O or a file that is not
// JSON at all.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath, templates: []Template{}, now: time.Now}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// SetClock overrides the time source used for timestamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// OnWrite registers fn to run just before the manager writes its file. The
// store watcher uses it to skip its own writes.
func (m *Manager) OnWrite(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWrite = fn
}

// Path returns the backing file.
func (m *Manager) Path() string {
	return m.filePath
}

// Reload replaces the in-memory list with the file contents.
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "read %s", m.filePath)
	}

	templates, err := decodeFile(data)
	if err != nil {
		return errors.WithHint(err, "fix or move the file aside; a missing file starts an empty library")
	}

	seen := make(map[string]bool, len(templates))
	for i := range templates {
		if templates[i].ID == "" || seen[templates[i].ID] {
			templates[i].ID = uuid.NewString()
		}
		seen[templates[i].ID] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = templates
	logger.Logger.Debugw("Loaded templates", "path", m.filePath, "count", len(templates))
	return nil
}

// List returns all templates ordered by SortOrder, ties by insertion order.
func (m *Manager) List() []Template {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted()
}

func (m *Manager) sorted() []Template {
	out := make([]Template, len(m.templates))
	for i, t := range m.templates {
		out[i] = t.clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// Get returns a copy of the template with id.
func (m *Manager) Get(id string) (Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.index(id)
	if i < 0 {
		return Template{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return m.templates[i].clone(), nil
}

// Create assigns an ID, timestamps and a trailing sort order, then persists.
func (m *Manager) Create(t Template) (Template, error) {
	if err := validate(t); err != nil {
		return Template{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t = t.clone()
	t.normalize()
	t.ID = uuid.NewString()
	now := m.now()
	t.CreatedAt, t.UpdatedAt = now, now
	t.UsageCount = 0
	t.LastUsedAt = nil
	t.SortOrder = m.nextSortOrder()
	if err := m.checkShortcut(t); err != nil {
		return Template{}, err
	}

	next := append(m.snapshot(), t)
	if err := m.commit(next); err != nil {
		return Template{}, err
	}
	return t.clone(), nil
}

// Update replaces the editable fields of an existing template. Usage
// statistics, position and creation time are kept from the stored copy.
func (m *Manager) Update(t Template) (Template, error) {
	if err := validate(t); err != nil {
		return Template{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(t.ID)
	if i < 0 {
		return Template{}, errors.Wrapf(ErrNotFound, "id %s", t.ID)
	}
	old := m.templates[i]

	t = t.clone()
	t.normalize()
	t.UsageCount = old.UsageCount
	t.LastUsedAt = old.LastUsedAt
	t.SortOrder = old.SortOrder
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = m.now()
	if err := m.checkShortcut(t); err != nil {
		return Template{}, err
	}

	next := m.snapshot()
	next[i] = t
	if err := m.commit(next); err != nil {
		return Template{}, err
	}
	return t.clone(), nil
}

// Delete removes the template with id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}
	next := m.snapshot()
	next = append(next[:i], next[i+1:]...)
	return m.commit(next)
}

// Reorder gives the listed ids sort orders 0..n-1 in the given order.
// Templates not listed follow them, keeping their current relative order.
func (m *Manager) Reorder(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		if m.index(id) < 0 {
			return errors.Wrapf(ErrNotFound, "id %s", id)
		}
		if _, dup := rank[id]; dup {
			return errors.Wrapf(ErrInvalid, "id %s listed twice", id)
		}
		rank[id] = i
	}

	next := m.snapshot()
	rest := len(ids)
	for _, t := range m.sorted() {
		if _, ok := rank[t.ID]; !ok {
			rank[t.ID] = rest
			rest++
		}
	}
	for i := range next {
		next[i].SortOrder = rank[next[i].ID]
	}
	return m.commit(next)
}

// MarkUsed bumps the usage count and last-used time.
func (m *Manager) MarkUsed(id string) (Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return Template{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	next := m.snapshot()
	now := m.now()
	next[i].UsageCount++
	next[i].LastUsedAt = &now
	if err := m.commit(next); err != nil {
		return Template{}, err
	}
	return next[i].clone(), nil
}

// Recent returns up to n used templates, most recently used first.
func (m *Manager) Recent(n int) []Template {
	used := []Template{}
	for _, t := range m.List() {
		if t.LastUsedAt != nil {
			used = append(used, t)
		}
	}
	sort.SliceStable(used, func(i, j int) bool { return used[i].LastUsedAt.After(*used[j].LastUsedAt) })
	if n >= 0 && len(used) > n {
		used = used[:n]
	}
	return used
}

func validate(t Template) error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.Wrap(ErrInvalid, "title is required")
	}
	return nil
}

func (m *Manager) checkShortcut(t Template) error {
	if t.Shortcut == nil {
		return nil
	}
	for _, o := range m.templates {
		if o.ID == t.ID || o.Shortcut == nil {
			continue
		}
		if o.Shortcut.ConflictsWith(*t.Shortcut) {
			return errors.Wrapf(ErrShortcutConflict, "%s is used by %q", t.Shortcut.Combo, o.Title)
		}
	}
	return nil
}

func (m *Manager) nextSortOrder() int {
	next := 0
	for _, t := range m.templates {
		if t.SortOrder >= next {
			next = t.SortOrder + 1
		}
	}
	return next
}

func (m *Manager) index(id string) int {
	for i, t := range m.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) snapshot() []Template {
	out := make([]Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// commit writes next to disk and only then makes it current.
// Caller must hold m.mu.
func (m *Manager) commit(next []Template) error {
	if err := m.writeAtomic(next); err != nil {
		return err
	}
	m.templates = next
	return nil
}

// writeAtomic writes to a temp file then renames it over filePath.
func (m *Manager) writeAtomic(templates []Template) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode templates")
	}
	if m.onWrite != nil {
		m.onWrite()
	}
	tmp := m.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, m.filePath), "replace %s", m.filePath)
}
