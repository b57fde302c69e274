package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var ErrLocked = errors.New("subscription store is locked by another process")

var (
	lockAttempts   = 20
	lockRetryDelay = 50 * time.Millisecond
	// Locks older than this are left over from a crashed process.
	lockStaleAfter = time.Minute
)

func acquireLock(path string) (func(), error) {
	for attempt := 0; ; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			_ = os.Remove(path)
			continue
		}
		if attempt >= lockAttempts {
			return nil, fmt.Errorf("%w (remove %s if no other bingers is running)", ErrLocked, path)
		}
		time.Sleep(lockRetryDelay)
	}
}
