package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collector records events delivered to a handler.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *collector) has(op Operation, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.Op == op && e.Path == path {
			return true
		}
	}
	return false
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestNew(t *testing.T) {
	t.Parallel()

	w := New()
	assert.Equal(t, 100*time.Millisecond, w.debounce)
	assert.False(t, w.IsRunning())

	w = New(WithDebounce(50*time.Millisecond), WithDebounce(-1))
	assert.Equal(t, 50*time.Millisecond, w.debounce)
}

func TestOperation_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestWatcher_WatchUnwatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w := New()
	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(b))
	assert.ElementsMatch(t, []string{a, b}, w.WatchedFiles())
	assert.Equal(t, 2, w.dirs[dir])

	require.NoError(t, w.Unwatch(a))
	require.NoError(t, w.Unwatch(a))
	assert.Equal(t, []string{b}, w.WatchedFiles())
	assert.Equal(t, 1, w.dirs[dir])

	require.NoError(t, w.Unwatch(b))
	assert.Empty(t, w.WatchedFiles())
	assert.NotContains(t, w.dirs, dir)
}

func TestWatcher_StartStop(t *testing.T) {
	t.Parallel()

	w := New()
	require.NoError(t, w.Watch(filepath.Join(t.TempDir(), "a.toml")))

	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	t.Parallel()

	w := New()
	require.NoError(t, w.Watch(filepath.Join(t.TempDir(), "missing", "a.toml")))
	assert.Error(t, w.Start())
	assert.False(t, w.IsRunning())
}

func TestWatcher_DetectsFileModification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "announce.toml")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o600))

	w := New(WithDebounce(0))
	c := &collector{}
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("modified"), 0o600))

	assert.Eventually(t, func() bool {
		return c.has(OpWrite, path)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_DetectsFileCreationAndRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "announce.yaml")

	w := New(WithDebounce(0))
	c := &collector{}
	w.OnChange(c.handle)
	require.NoError(t, w.Start())
	defer w.Stop()
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(path, []byte("a: 1"), 0o600))
	assert.Eventually(t, func() bool {
		return c.has(OpCreate, path)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		return c.has(OpRemove, path)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "announce.toml")
	other := filepath.Join(dir, "other.toml")

	w := New(WithDebounce(0))
	c := &collector{}
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		return c.has(OpCreate, path)
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, c.has(OpCreate, other))
}

func TestWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "announce.toml")

	w := New(WithDebounce(50 * time.Millisecond))
	c := &collector{}
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o600))
	}

	assert.Eventually(t, func() bool {
		return c.len() > 0
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, 1, c.len(), "rapid writes coalesce")
	assert.True(t, c.has(OpCreate, path), "create wins over later writes")
}

func TestWatcher_QueueEventCoalesces(t *testing.T) {
	t.Parallel()

	w := New()
	now := time.Now()

	w.queueEvent(Event{Path: "a", Op: OpCreate, Time: now})
	w.queueEvent(Event{Path: "a", Op: OpWrite, Time: now})
	assert.Equal(t, OpCreate, w.pendingFiles["a"].Op)

	w.queueEvent(Event{Path: "a", Op: OpRemove, Time: now})
	assert.Equal(t, OpRemove, w.pendingFiles["a"].Op)

	w.queueEvent(Event{Path: "b", Op: OpWrite, Time: now})
	w.queueEvent(Event{Path: "b", Op: OpWrite, Time: now.Add(time.Second)})
	assert.Equal(t, OpWrite, w.pendingFiles["b"].Op)
	assert.Equal(t, now.Add(time.Second), w.pendingFiles["b"].Time)
}

func TestWatcher_PanickingHandler(t *testing.T) {
	t.Parallel()

	w := New(WithDebounce(0))
	c := &collector{}
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(c.handle)

	w.emitEvent(Event{Path: "a", Op: OpWrite})
	assert.Equal(t, 1, c.len())
}
