package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout is the default timeout for acquiring the data dir lock.
const DefaultLockTimeout = 5 * time.Second

// LockDataDir takes an exclusive lock on the data directory so two serve
// processes don't share one history database. The returned release function
// must be called on shutdown.
func LockDataDir(dataDir string, timeout time.Duration) (release func(), err error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	lockPath := filepath.Join(dataDir, "serve.lock")
	fileLock := flock.New(lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("timed out acquiring lock on %s — is another serve running?", lockPath)
	}
	return func() { fileLock.Unlock() }, nil
}
