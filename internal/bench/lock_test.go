package bench

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLock(t *testing.T, dir string, info LockInfo) {
	t.Helper()
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, LockFileName), data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLock_AcquireRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	lock := NewLock(dir, nil)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	if err := lock.Acquire(); err != nil {
		t.Errorf("re-acquiring an owned lock should succeed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file left after Release")
	}
	if err := lock.Release(); err != nil {
		t.Errorf("releasing a free lock should succeed: %v", err)
	}
}

func TestLock_HeldByOtherProcess(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	writeLock(t, dir, LockInfo{PID: os.Getpid() + 1, SinceTS: now.Add(-time.Minute)})

	lock := NewLock(dir, nil)
	lock.now = func() time.Time { return now }

	if err := lock.Acquire(); !errors.Is(err, ErrLocked) {
		t.Errorf("Acquire() error = %v, want ErrLocked", err)
	}
	if err := lock.Release(); err == nil {
		t.Error("Release() of a foreign lock should fail")
	}
}

func TestLock_TakesOverStaleLock(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	writeLock(t, dir, LockInfo{PID: os.Getpid() + 1, SinceTS: now.Add(-DefaultLeaseTimeout - time.Minute)})

	lock := NewLock(dir, nil)
	lock.now = func() time.Time { return now }

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	info, err := lock.load()
	if err != nil {
		t.Fatal(err)
	}
	if info.PID != os.Getpid() || !info.SinceTS.Equal(now) {
		t.Errorf("lock = %+v", info)
	}
}

func TestLock_Disabled(t *testing.T) {
	lock := NewLock("", nil)
	if err := lock.Acquire(); err != nil {
		t.Errorf("Acquire() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
}
