package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"openai": {"model": "before"}}`)

	w, err := NewWatcher(tmpDir, nil)
	require.NoError(t, err)
	w.getenv = noEnv

	require.Equal(t, "before", w.Current().OpenAI.Model)

	require.NoError(t, w.Start(context.Background()))
	// Start is idempotent
	require.NoError(t, w.Start(context.Background()))

	// Replace via rename, the way most editors save
	tmp := filepath.Join(tmpDir, "config.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"openai": {"model": "after"}}`), 0600))
	require.NoError(t, os.Rename(tmp, filepath.Join(tmpDir, FileName)))

	require.Eventually(t, func() bool {
		return w.Current().OpenAI.Model == "after"
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Close())
}

func TestWatcher_CorruptKeepsServing(t *testing.T) {
	defer goleak.VerifyNone(t)

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"rss_feeds": ["https://a"]}`)

	w, err := NewWatcher(tmpDir, nil)
	require.NoError(t, err)
	w.getenv = noEnv
	require.NoError(t, w.Start(context.Background()))

	writeConfig(t, tmpDir, `{broken`)

	require.Eventually(t, func() bool {
		cfg := w.Current()
		return cfg != nil && len(cfg.RSSFeeds) == 0
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, w.Close())
}

func TestWatcher_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))

	cancel()
	require.NoError(t, w.Close())
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(t.TempDir(), nil)
	require.NoError(t, err)
	require.NotNil(t, w.Current())
	require.NoError(t, w.Close())
}
