package bot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaCleanupRemovesOnlyExpiredArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := filepath.Join(dir, "Photo_Jane-Doe-555_1717000000.png")
	fresh := filepath.Join(dir, "Photo_John-Doe-556_1717000001.png")
	unrelated := filepath.Join(dir, "notes.txt")

	for _, p := range []string{old, fresh, unrelated} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	// Age the expired artifact and the unrelated file past the window.
	stale := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.Chtimes(unrelated, stale, stale))

	task := NewMediaCleanupTask(dir, 30, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, task(context.Background()))

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, unrelated)
}

func TestMediaCleanupMissingDir(t *testing.T) {
	t.Parallel()

	task := NewMediaCleanupTask(filepath.Join(t.TempDir(), "missing"), 30, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, task(context.Background()))
}
