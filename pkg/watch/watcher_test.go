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

	"github.com/gnana997/apisync/pkg/pipeline"
	"github.com/gnana997/apisync/pkg/source"
)

// countingRunner records calls and fails if two runs overlap.
type countingRunner struct {
	mu      sync.Mutex
	active  int
	overlap bool
	calls   int
	delay   time.Duration
}

func (r *countingRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	r.mu.Lock()
	r.active++
	if r.active > 1 {
		r.overlap = true
	}
	r.calls++
	r.mu.Unlock()

	time.Sleep(r.delay)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return &pipeline.Result{}, nil
}

func waitForRun(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run")
	}
}

func TestWatcher_RerunsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "api.js")
	target := filepath.Join(dir, "extension.ts")
	require.NoError(t, os.WriteFile(src, []byte("a() {}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(""), 0o644))

	runs := make(chan struct{}, 10)
	runner := &countingRunner{}
	w, err := New(runner, source.Config{Path: src}, target, Options{
		Debounce: 20 * time.Millisecond,
		OnResult: func(*pipeline.Result, error) { runs <- struct{}{} },
	}, nil)
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(src, []byte("a() {}\nb() {}"), 0o644))
	waitForRun(t, runs)
	assert.GreaterOrEqual(t, w.Stats().Runs, 1)
}

func TestWatcher_IgnoresTargetAndUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "api.js")
	target := filepath.Join(dir, "extension.ts")
	require.NoError(t, os.WriteFile(src, []byte("a() {}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(""), 0o644))

	runner := &countingRunner{}
	w, err := New(runner, source.Config{Path: src}, target, Options{Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(target, []byte("changed"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, w.Stats().Runs)
}

func TestWatcher_Relevant(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "src", "extension.ts")

	w, err := New(&countingRunner{}, source.Config{
		Root:    root,
		Include: []string{"api/**/*.js"},
		Exclude: []string{"api/vendor/**"},
	}, target, Options{}, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.relevant(filepath.Join(root, "api", "a.js")))
	assert.True(t, w.relevant(filepath.Join(root, "api", "nested", "b.js")))
	assert.False(t, w.relevant(filepath.Join(root, "api", "vendor", "v.js")))
	assert.False(t, w.relevant(filepath.Join(root, "api", "a.ts")))
	assert.False(t, w.relevant(target))
	assert.False(t, w.relevant(filepath.Join(root, "src", ".extension.ts.tmp1234")))
	assert.False(t, w.relevant(filepath.Join(filepath.Dir(root), "elsewhere.js")))
}

func TestWatcher_TriggerSerializesRuns(t *testing.T) {
	dir := t.TempDir()
	runner := &countingRunner{delay: 20 * time.Millisecond}
	w, err := New(runner, source.Config{Path: filepath.Join(dir, "api.js")}, filepath.Join(dir, "x.ts"), Options{}, nil)
	require.NoError(t, err)
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Trigger()
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, runner.calls)
	assert.False(t, runner.overlap)
	assert.Equal(t, 4, w.Stats().Runs)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(&countingRunner{}, source.Config{Path: filepath.Join(dir, "api.js")}, filepath.Join(dir, "x.ts"), Options{}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
	assert.Error(t, w.Start(context.Background()))
}

// editingRunner rewrites the source file during its first run.
type editingRunner struct {
	countingRunner
	src string
}

func (r *editingRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	r.mu.Lock()
	first := r.calls == 0
	r.mu.Unlock()
	if first {
		if err := os.WriteFile(r.src, []byte("a() {}\nb() {}"), 0o644); err != nil {
			return nil, err
		}
	}
	return r.countingRunner.Run(ctx)
}

func TestWatcher_StartAndSyncSeesEditDuringFirstRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "api.js")
	target := filepath.Join(dir, "extension.ts")
	require.NoError(t, os.WriteFile(src, []byte("a() {}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(""), 0o644))

	runs := make(chan struct{}, 10)
	runner := &editingRunner{src: src}
	w, err := New(runner, source.Config{Path: src}, target, Options{
		Debounce: 20 * time.Millisecond,
		OnResult: func(*pipeline.Result, error) { runs <- struct{}{} },
	}, nil)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.StartAndSync(context.Background()))
	waitForRun(t, runs)
	waitForRun(t, runs)
	assert.GreaterOrEqual(t, w.Stats().Runs, 2)
}
