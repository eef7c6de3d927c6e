package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/sitewright/internal/apperr"
	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/mutate"
	"github.com/starford/sitewright/internal/rebuild"
	"github.com/starford/sitewright/internal/site"
	"github.com/starford/sitewright/internal/siteservice"
	"github.com/starford/sitewright/internal/testutil"
)

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) (bool, error) {
	c.calls.Add(1)
	return true, nil
}

// busyReloader refuses the first busyFor reloads with apperr.ErrBusy.
type busyReloader struct {
	busyFor int32
	calls   atomic.Int32
}

func (b *busyReloader) Reload(context.Context) (bool, error) {
	if b.calls.Add(1) <= b.busyFor {
		return false, apperr.ErrBusy
	}
	return true, nil
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, site.ConfigFile)
	r := &countingReloader{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, path, r, 100*time.Millisecond, testLogger())
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte("{}"), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return r.calls.Load() >= 1
	}, "reload never called")
	time.Sleep(300 * time.Millisecond)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("reload calls = %d, want 1 for a burst of writes", n)
	}
}

func TestWatch_RetriesWhileBusy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, site.ConfigFile)
	r := &busyReloader{busyFor: 2}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, path, r, 50*time.Millisecond, testLogger())
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(path, []byte("{}"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		return r.calls.Load() >= 3
	}, "busy reload was not retried")
	time.Sleep(200 * time.Millisecond)
	if n := r.calls.Load(); n != 3 {
		t.Errorf("reload calls = %d, want 3 (two busy, one applied)", n)
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	r := &countingReloader{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, filepath.Join(dir, site.ConfigFile), r, 50*time.Millisecond, testLogger())
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)
	if n := r.calls.Load(); n != 0 {
		t.Errorf("reload calls = %d, want 0", n)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, filepath.Join(dir, site.ConfigFile), &countingReloader{}, 0, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_ReloadsService(t *testing.T) {
	siteDir, fs := testutil.TestSite(t)
	db := testutil.TestDB(t)
	photos := assets.NewPhotos(testutil.Photos{}, nil)
	resolver := assets.NewResolver(photos, testutil.Images{}, site.NewImageStore(fs), 2, nil)
	rb := rebuild.New(&testutil.Generator{}, resolver, mutate.NewApplier(photos), db, nil)
	svc := siteservice.New(site.NewStore(fs), db, rb, nil, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, filepath.Join(siteDir, site.ConfigFile), svc, 50*time.Millisecond, testLogger())
	time.Sleep(100 * time.Millisecond)

	cfg := site.Default()
	cfg.Sections["hero"].Elements["hero-title-1"].Content.EN = "<h1>Edited</h1>"
	if _, err := site.NewStore(fs).Save(cfg); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		live, _, err := svc.Site(context.Background())
		return err == nil && live.Sections["hero"].Elements["hero-title-1"].Content.EN == "<h1>Edited</h1>"
	}, "external edit not reloaded")

	entries, _ := svc.History(context.Background(), 10)
	if len(entries) < 2 || entries[0].Label != siteservice.LabelExternalEdit {
		t.Errorf("history = %+v", entries)
	}
}
