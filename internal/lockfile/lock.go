// Package lockfile serializes deploy runs across processes with an advisory file lock.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conn-castle/vizdeploy/internal/messages"
)

// ErrTimeout is returned when the lock is still held by another process after the wait timeout.
var ErrTimeout = errors.New(messages.LockTimeout)

// DefaultTimeout bounds how long With waits for a held lock.
const DefaultTimeout = 30 * time.Second

var (
	lockPollEvery = 100 * time.Millisecond
	lockSleep     = time.Sleep
	lockNow       = time.Now
)

// errBusy is returned by tryLock when another holder owns the lock.
var errBusy = errors.New("lock busy")

type fileLock struct {
	file *os.File
}

// PathFor returns the lock file used for deploys into dir.
// Different spellings of the same directory map to the same lock.
func PathFor(dir string) string {
	key := filepath.Clean(dir)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}
	sum := sha256.Sum256([]byte(strings.ToLower(key)))
	return filepath.Join(os.TempDir(), "vizdeploy-"+hex.EncodeToString(sum[:8])+".lock")
}

// With acquires the lock at path, runs fn, and releases the lock.
// A non-positive timeout uses DefaultTimeout.
func With(path string, timeout time.Duration, fn func() error) error {
	lock, err := acquire(path, timeout)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.release()
	}()
	return fn()
}

// acquire opens or creates path and waits for an exclusive lock.
func acquire(path string, timeout time.Duration) (*fileLock, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(messages.LockPathRequired)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, path, err)
	}
	deadline := lockNow().Add(timeout)
	for {
		err := tryLock(file)
		if err == nil {
			return &fileLock{file: file}, nil
		}
		if !errors.Is(err, errBusy) {
			_ = file.Close()
			return nil, fmt.Errorf(messages.LockAcquireFmt, path, err)
		}
		if lockNow().After(deadline) {
			_ = file.Close()
			return nil, fmt.Errorf(messages.LockTimeoutFmt, path, ErrTimeout, timeout)
		}
		lockSleep(lockPollEvery)
	}
}

// release unlocks and closes the file lock.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := unlock(l.file); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}
