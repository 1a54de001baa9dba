package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFolder(t *testing.T, dir string, delay time.Duration) (*Folder, chan struct{}, *atomic.Int32) {
	t.Helper()
	changed := make(chan struct{}, 16)
	var calls atomic.Int32
	f, err := New(dir, delay, func() {
		calls.Add(1)
		changed <- struct{}{}
	}, nil)
	require.NoError(t, err)
	require.NoError(t, f.Start())
	t.Cleanup(f.Stop)

	// Allow fsnotify to register the watches
	time.Sleep(100 * time.Millisecond)
	return f, changed, &calls
}

func waitChange(t *testing.T, changed <-chan struct{}) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), time.Millisecond, func() {}, nil)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.obj")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, time.Millisecond, func() {}, nil)
	assert.Error(t, err)
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	_, changed, calls := startFolder(t, dir, 200*time.Millisecond)

	for _, name := range []string{"a.obj", "b.obj", "c.obj"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("v 0 0 0\n"), 0644))
	}

	waitChange(t, changed)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	_, changed, _ := startFolder(t, dir, 50*time.Millisecond)

	sub := filepath.Join(dir, "cars")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitChange(t, changed)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "car.obj"), []byte("v 0 0 0\n"), 0644))
	waitChange(t, changed)
}

func TestHiddenFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	_, _, calls := startFolder(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".swp"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestStartTwiceFails(t *testing.T) {
	f, _, _ := startFolder(t, t.TempDir(), time.Millisecond)
	assert.Error(t, f.Start())
	f.Stop()
	f.Stop()
}
