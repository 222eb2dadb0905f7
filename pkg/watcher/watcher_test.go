package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTrigger_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	w := New("snippets.yaml", func(context.Context) { calls.Add(1) }, WithDebounce(30*time.Millisecond))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		w.Trigger(ctx)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	w.stop()
}

func TestStop_CancelsPending(t *testing.T) {
	var calls atomic.Int32
	w := New("snippets.yaml", func(context.Context) { calls.Add(1) }, WithDebounce(time.Hour))

	w.Trigger(context.Background())
	w.stop()
	assert.Equal(t, int32(0), calls.Load())
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "snippets.yaml"), func(context.Context) {})

	cases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "snippets.yaml"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "snippets.yaml"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "snippets.yaml"), Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "snippets.yaml"), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, w.relevant(tc.event), "%s", tc.event)
	}
}

func TestRun_ReportsFileWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snippets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	var calls atomic.Int32
	w := New(path, func(context.Context) { calls.Add(1) }, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give fsnotify time to register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("- trigger: x\n  form: y\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("z"), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestRun_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "snippets.yaml"), func(context.Context) {})
	err := w.Run(context.Background())
	assert.Error(t, err)
}
