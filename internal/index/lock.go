package index

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
)

// LockHeldError is returned when another live process holds the build lock.
type LockHeldError struct {
	PID int
}

// Error implements the error interface.
func (e *LockHeldError) Error() string {
	return fmt.Sprintf("build lock held by live process %d", e.PID)
}

// AlivenessFunc reports whether the process with the given pid is alive.
// The lock protocol itself is platform-neutral; liveness probing is the
// per-platform capability injected here.
type AlivenessFunc func(pid int) bool

// ProcessAlive is the default AlivenessFunc. On Unix, FindProcess always
// succeeds, so signal 0 probes for actual existence.
func ProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Lock is a held build lock. At most one live holder exists per index root.
type Lock struct {
	path string
	fl   *flock.Flock
	pid  int
}

// AcquireLock takes the build lock for the index root described by layout.
//
// If the lock record names a holder that is verified alive, acquisition
// fails with LockHeldError. A missing, unreadable, or dead-holder record is
// overwritten with this process's identity. The flock sidecar serializes
// the record read/modify/write so two racing acquirers cannot both win.
func AcquireLock(layout Layout, alive AlivenessFunc) (*Lock, error) {
	if alive == nil {
		alive = ProcessAlive
	}
	if err := os.MkdirAll(layout.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index root: %w", err)
	}

	fl := flock.New(layout.FlockPath())
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", layout.FlockPath(), err)
	}
	defer func() { _ = fl.Unlock() }()

	self := os.Getpid()
	if pid, ok := readLockRecord(layout.LockPath()); ok && pid != self && alive(pid) {
		return nil, &LockHeldError{PID: pid}
	}

	if err := os.WriteFile(layout.LockPath(), []byte(strconv.Itoa(self)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write lock record: %w", err)
	}

	return &Lock{path: layout.LockPath(), fl: fl, pid: self}, nil
}

// Release removes the lock record, but only if it still names this holder.
// A slow process that was pre-empted must not delete a newer holder's lock.
// Safe to call on every exit path.
func (l *Lock) Release() error {
	if err := l.fl.Lock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.fl.Path(), err)
	}
	defer func() { _ = l.fl.Unlock() }()

	if pid, ok := readLockRecord(l.path); !ok || pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock record: %w", err)
	}
	return nil
}

// readLockRecord parses the pid from the lock record.
// ok is false when the record is missing or unreadable.
func readLockRecord(path string) (pid int, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, true
}
