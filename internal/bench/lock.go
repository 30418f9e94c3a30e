package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mlprobe/internal/fsutil"
	"mlprobe/internal/logging"
)

const (
	// LockFileName is the name of the benchmark lock file in the state directory
	LockFileName = "bench_lock.json"
	// DefaultLeaseTimeout is the age after which a lock left by a crashed run is ignored
	DefaultLeaseTimeout = 30 * time.Minute
)

// ErrLocked is returned when another benchmark holds the lock.
var ErrLocked = errors.New("another benchmark is running")

// LockInfo is the content of the lock file
type LockInfo struct {
	PID     int       `json:"pid"`
	SinceTS time.Time `json:"since_ts"`
}

// Lock keeps two benchmarks from running at once and skewing each other.
// A Lock with an empty state directory never blocks.
type Lock struct {
	stateDir     string
	logger       *logging.Logger
	leaseTimeout time.Duration
	pid          int
	now          func() time.Time
}

// NewLock creates a lock stored in stateDir
func NewLock(stateDir string, logger *logging.Logger) *Lock {
	return &Lock{
		stateDir:     stateDir,
		logger:       logger,
		leaseTimeout: DefaultLeaseTimeout,
		pid:          os.Getpid(),
		now:          time.Now,
	}
}

func (l *Lock) path() string {
	return filepath.Join(l.stateDir, LockFileName)
}

// Acquire takes the lock. A lock older than the lease timeout is taken over.
func (l *Lock) Acquire() error {
	if l.stateDir == "" {
		return nil
	}

	path := l.path()
	if err := fsutil.EnsureParentDirectory(path); err != nil {
		return err
	}

	data, err := json.Marshal(LockInfo{PID: l.pid, SinceTS: l.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal lock: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		err = l.create(path, data)
		if !errors.Is(err, os.ErrExist) {
			break
		}

		existing, loadErr := l.load()
		if loadErr != nil {
			return loadErr
		}
		if existing.PID == l.pid {
			return nil
		}
		age := l.now().Sub(existing.SinceTS)
		if age <= l.leaseTimeout {
			return fmt.Errorf("%w (pid %d, started %s ago)", ErrLocked, existing.PID, age.Round(time.Second))
		}

		l.logger.Warn("bench.lock.stale_detected", "Taking over stale benchmark lock", map[string]interface{}{
			"previous_pid": existing.PID,
			"age_seconds":  age.Seconds(),
		})
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("failed to clear stale lock: %w", rmErr)
		}
	}
	if errors.Is(err, os.ErrExist) {
		return ErrLocked
	}
	if err != nil {
		return err
	}

	l.logger.Debug("bench.lock.acquired", "Benchmark lock acquired", map[string]interface{}{
		"pid": l.pid,
	})
	return nil
}

// create writes the lock file, failing with os.ErrExist when it is present.
func (l *Lock) create(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fsutil.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return f.Close()
}

// Release removes the lock when this process holds it
func (l *Lock) Release() error {
	if l.stateDir == "" {
		return nil
	}

	existing, err := l.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if existing.PID != l.pid {
		return fmt.Errorf("cannot release lock held by pid %d", existing.PID)
	}

	if err := os.Remove(l.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	l.logger.Debug("bench.lock.released", "Benchmark lock released", map[string]interface{}{
		"pid": l.pid,
	})
	return nil
}

func (l *Lock) load() (LockInfo, error) {
	data, err := os.ReadFile(l.path())
	if err != nil {
		return LockInfo{}, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return LockInfo{}, fmt.Errorf("failed to unmarshal lock: %w", err)
	}
	return info, nil
}
