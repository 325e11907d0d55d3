package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[path]++
}

func (r *recorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func start(t *testing.T, r *recorder) *Watcher {
	t.Helper()

	w, err := New(r.record)
	require.NoError(t, err)
	w.Debounce = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return w
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Xresources")
	other := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	r := &recorder{}
	w := start(t, r)
	require.NoError(t, w.AddFile(file))

	// a burst of writes is reported once
	for i := range 5 {
		require.NoError(t, os.WriteFile(file, []byte{byte('a' + i), '\n'}, 0644))
	}
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	assert.Eventually(t, func() bool { return r.count(file) == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, r.count(file))
	assert.Zero(t, r.count(other))
	assert.Zero(t, r.count(dir))
}

func TestWatchDir(t *testing.T) {
	dir := t.TempDir()

	r := &recorder{}
	w := start(t, r)
	require.NoError(t, w.AddDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), []byte("x"), 0644))

	assert.Eventually(t, func() bool { return r.count(dir) >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatchRemove(t *testing.T) {
	dir := t.TempDir()

	r := &recorder{}
	w := start(t, r)
	require.NoError(t, w.AddDir(dir))
	w.Remove(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, r.count(dir))
}

func TestRemoveDirKeepsFileInIt(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Xresources")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	r := &recorder{}
	w := start(t, r)
	require.NoError(t, w.AddFile(file))
	require.NoError(t, w.AddDir(dir))
	w.Remove(dir)

	require.NoError(t, os.WriteFile(file, []byte("b\n"), 0644))
	assert.Eventually(t, func() bool { return r.count(file) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Zero(t, r.count(dir))
}

func TestRemoveFileKeepsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Xresources")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	r := &recorder{}
	w := start(t, r)
	require.NoError(t, w.AddDir(dir))
	require.NoError(t, w.AddFile(file))
	w.Remove(file)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), []byte("x"), 0644))
	assert.Eventually(t, func() bool { return r.count(dir) >= 1 }, 3*time.Second, 10*time.Millisecond)
}

func TestAddMissing(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.AddDir(filepath.Join(t.TempDir(), "missing")))
}
