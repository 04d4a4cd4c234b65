//go:build unix

package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/pixhash/internal/apperr"
)

// mkfifo creates a named pipe whose open blocks until a writer appears, and
// unblocks the reader when the test ends.
func mkfifo(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, syscall.Mkfifo(path, 0o644))
	t.Cleanup(func() {
		if w, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0); err == nil {
			w.Close()
		}
	})
}

func TestFetch_DeadlineWhileReading(t *testing.T) {
	dir := t.TempDir()
	mkfifo(t, filepath.Join(dir, "slow.png"))
	s, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.Fetch(ctx, "slow.png")
	assert.Less(t, time.Since(start), 5*time.Second)

	require.ErrorIs(t, err, apperr.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
