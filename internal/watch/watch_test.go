package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	patch := filepath.Join(dir, "patch.hcl")
	require.NoError(t, os.WriteFile(patch, []byte(`node "a" {}`), 0o644))

	batches := make(chan []string, 4)
	w, err := New(".hcl", 50*time.Millisecond, func(_ context.Context, changed []string) {
		batches <- changed
	}, patch)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(patch, []byte(`node "b" {}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case changed := <-batches:
		assert.Equal(t, []string{patch}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	select {
	case extra := <-batches:
		t.Fatalf("burst split into more than one batch: %v", extra)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_FileRootIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	patch := filepath.Join(dir, "patch.hcl")
	sibling := filepath.Join(dir, "other.hcl")
	require.NoError(t, os.WriteFile(patch, []byte(`node "a" {}`), 0o644))

	batches := make(chan []string, 4)
	w, err := New(".hcl", 50*time.Millisecond, func(_ context.Context, changed []string) {
		batches <- changed
	}, patch)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(sibling, []byte(`node "s" {}`), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "deep.hcl"), []byte(`node "d" {}`), 0o644))

	select {
	case changed := <-batches:
		t.Fatalf("sibling change reported: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(patch, []byte(`node "b" {}`), 0o644))
	select {
	case changed := <-batches:
		assert.Equal(t, []string{patch}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Covers(t *testing.T) {
	w := &Watcher{
		files: map[string]struct{}{filepath.Join("a", "patch.hcl"): {}},
		dirs:  []string{"lib"},
	}

	assert.True(t, w.covers(filepath.Join("a", "patch.hcl")))
	assert.True(t, w.covers("a/./patch.hcl"))
	assert.False(t, w.covers(filepath.Join("a", "other.hcl")))
	assert.True(t, w.covers(filepath.Join("lib", "x.hcl")))
	assert.True(t, w.covers(filepath.Join("lib", "sub", "y.hcl")))
	assert.False(t, w.covers("library.hcl"))
	assert.False(t, w.covers(filepath.Join("..", "lib", "x.hcl")))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(".hcl", 0, nil, t.TempDir())
	assert.Error(t, err)

	_, err = New(".hcl", 0, func(context.Context, []string) {}, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
