package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dshills/compactlog/internal/annotation"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSyncFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.js")
	writeFile(t, path, "// a\n// b\nuse("+annotation.Render("v1", 0, "k")+");\n")

	wrote, err := SyncFile(path)
	if err != nil {
		t.Fatalf("SyncFile() error = %v", err)
	}
	if !wrote {
		t.Fatal("SyncFile() did not write a stale file")
	}
	if !strings.Contains(readFile(t, path), `"3:"`) {
		t.Errorf("label not updated:\n%s", readFile(t, path))
	}

	wrote, err = SyncFile(path)
	if err != nil || wrote {
		t.Errorf("second SyncFile() = %v, %v; want false, nil", wrote, err)
	}
}

func TestSyncFileKeepsCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.js")
	writeFile(t, path, "x;\r\ny;\r\n"+annotation.Render("foo", 0, "k")+"\r\n")

	wrote, err := SyncFile(path)
	if err != nil || !wrote {
		t.Fatalf("SyncFile() = %v, %v; want true, nil", wrote, err)
	}
	got := readFile(t, path)
	want := "x;\r\ny;\r\n" + annotation.Render("foo", 2, "k") + "\r\n"
	if got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestSyncFileMissing(t *testing.T) {
	_, err := SyncFile(filepath.Join(t.TempDir(), "gone.js"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("SyncFile() error = %v, want ErrNotExist", err)
	}
}

func TestWatcherSyncsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.js")
	other := filepath.Join(dir, "other.js")
	writeFile(t, path, "plain\n")
	writeFile(t, other, "plain\n")

	synced := make(chan bool, 10)
	w, err := New(
		WithDebounce(10*time.Millisecond),
		OnSync(func(p string, wrote bool, err error) {
			if err != nil {
				t.Errorf("sync %s: %v", p, err)
			}
			synced <- wrote
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := w.Add(path); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("second Add() error = %v, want ErrAlreadyWatching", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unwatched files in the same directory are ignored.
	writeFile(t, other, "\n"+annotation.Render("v1", 0, "k"))
	writeFile(t, path, "\n\n"+annotation.Render("v2", 0, "k"))

	select {
	case wrote := <-synced:
		if !wrote {
			t.Error("first sync did not write")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sync")
	}

	if !strings.Contains(readFile(t, path), `"3:"`) {
		t.Errorf("watched file not updated:\n%s", readFile(t, path))
	}
	if strings.Contains(readFile(t, other), `"2:"`) {
		t.Error("unwatched file was synced")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunReturnsOnClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	w.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after Close")
	}
}

func TestScheduleAbandonedAfterCancel(t *testing.T) {
	w, err := New(WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	base := runtime.NumGoroutine()
	ctx, cancel := context.WithCancel(context.Background())
	due := make(chan string)
	w.schedule(ctx, due, "app.js")
	time.Sleep(20 * time.Millisecond)
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > base {
		if time.Now().After(deadline) {
			t.Fatalf("timer goroutine still blocked: %d goroutines, started with %d", runtime.NumGoroutine(), base)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAddAfterClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	if err := w.Add(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add() error = %v, want ErrWatcherClosed", err)
	}
}
