package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigrun/rigrun/config"
)

func TestDiscoverTests(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"uart.rs", "gpio-flex.rs", "i2c-loopback.rs"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("// test"), 0644))
	}
	// Non-test entries must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fixtures.rs"), 0755))

	cfg := config.Default()
	cfg.TestsDir = dir

	tests, err := discoverTests(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"gpio-flex", "i2c-loopback", "uart"}, tests)
}

func TestDiscoverTests_MissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.TestsDir = filepath.Join(t.TempDir(), "nope")

	_, err := discoverTests(cfg)
	require.Error(t, err)
}

func TestDiscoverTests_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.rs", "a.rs", "b.rs"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	cfg := config.Default()
	cfg.TestsDir = dir

	first, err := discoverTests(cfg)
	require.NoError(t, err)
	second, err := discoverTests(cfg)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, []string{"a", "b", "c"}, first)
}
