package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "menuroll.log")

	for _, backend := range []string{BackendSlog, BackendZap} {
		log, closer, err := Open(backend, "info", path)
		require.NoError(t, err)
		log.Info(context.Background(), "hello from "+backend, "k", "v")
		require.NoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from slog")
	assert.Contains(t, string(data), "hello from zap")

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestOpen_Stderr(t *testing.T) {
	log, closer, err := Open("", "debug", Stderr)
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NoError(t, closer.Close())
}

func TestOpen_BadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	_, _, err := Open(BackendZap, "loud", path)
	assert.Error(t, err)
}
