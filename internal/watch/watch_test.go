package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, dir string, opts Options, build BuildFunc) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, dir, opts, build) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestRunRebuildsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var builds atomic.Int32
	cancel, done := start(t, dir, Options{Debounce: 300 * time.Millisecond}, func(context.Context) error {
		builds.Add(1)
		return nil
	})

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// A burst of writes is one rebuild.
	for _, name := range []string{"a.xml", "b.xml", "c.xml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<doxygen/>"), 0o644))
	}
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, int32(2), builds.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunSurvivesFailedBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var builds atomic.Int32
	start(t, dir, Options{Debounce: 50 * time.Millisecond}, func(context.Context) error {
		builds.Add(1)
		return errors.New("broken unit")
	})

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), nil, 0o644))
	require.Eventually(t, func() bool { return builds.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestRunMissingDir(t *testing.T) {
	t.Parallel()

	called := false
	err := Run(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"xml write", fsnotify.Event{Name: "/x/a.xml", Op: fsnotify.Write}, true},
		{"xml remove", fsnotify.Event{Name: "/x/a.xml", Op: fsnotify.Remove}, true},
		{"xml chmod", fsnotify.Event{Name: "/x/a.xml", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/x/a.txt", Op: fsnotify.Write}, false},
		{"ignore file", fsnotify.Event{Name: "/x/.doxyfrontignore", Op: fsnotify.Create}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, relevant(tt.ev, ".doxyfrontignore"))
		})
	}
}
