package trapbuilder

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// buildLock is an advisory exclusive file lock over a single checkpoint
// directory, preventing two builder processes from sweeping the same
// variant concurrently and racing each other's checkpoint/snapshot writes.
// The original guards against this with a single-process CLI invocation
// model; since morrisctl is a long-running multi-invocation tool, flock(2)
// gives the same guarantee across process boundaries.
type buildLock struct {
	file *os.File
}

// acquireBuildLock takes an exclusive, non-blocking lock on dir's lock
// file, returning an error immediately if another builder already holds
// it rather than blocking the caller indefinitely.
func acquireBuildLock(dir string) (*buildLock, error) {
	path := filepath.Join(dir, ".build.lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("trapbuilder: opening lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("trapbuilder: another build is already running against %s: %w", dir, err)
	}
	return &buildLock{file: f}, nil
}

func (l *buildLock) release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
