//go:build !windows

package lockfile

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

var flockFn = unix.Flock

// tryLock takes a non-blocking exclusive flock on file.
func tryLock(file *os.File) error {
	err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
		return errBusy
	}
	return err
}

func unlock(file *os.File) error {
	return flockFn(int(file.Fd()), unix.LOCK_UN)
}
