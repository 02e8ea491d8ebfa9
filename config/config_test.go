package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/treeaudit/config"
)

func writeConfig(tb testing.TB, content string) string {
	tb.Helper()

	pa := filepath.Join(tb.TempDir(), config.DefaultFileName)
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func TestLoadOptional_missing_file_uses_defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.ColorEnabled())
}

func TestLoadOptional_reads_existing_file(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadOptional(writeConfig(t, "format: yaml\n"))

	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestLoadOptional_still_rejects_bad_file(t *testing.T) {
	t.Parallel()

	_, err := config.LoadOptional(writeConfig(t, "format: xml\n"))

	require.Error(t, err)
}

func TestLoad_missing_file_is_an_error(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoad_full_file(t *testing.T) {
	t.Parallel()

	pa := writeConfig(t, `
exclude:
  - '^\.DS_Store$'
  - '\.sqlite3$'
exclude_dirs:
  - '^\.git$'
format: json
color: false
sort: true
`)

	cfg, err := config.Load(pa)

	require.NoError(t, err)
	assert.Equal(t, []string{`^\.DS_Store$`, `\.sqlite3$`}, cfg.Exclude)
	assert.Equal(t, []string{`^\.git$`}, cfg.ExcludeDirs)
	assert.Equal(t, "json", cfg.Format)
	assert.False(t, cfg.ColorEnabled())
	assert.True(t, cfg.Sort)
}

func TestLoad_partial_file_keeps_default_format(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, "sort: true\n"))

	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Sort)
}

func TestLoad_rejects_bad_input(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown_field":   "algorithm: md5\n",
		"bad_pattern":     "exclude:\n  - '('\n",
		"bad_dir_pattern": "exclude_dirs:\n  - '[z-a]'\n",
		"bad_format":      "format: xml\n",
		"malformed":       "exclude: [unterminated\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), "loading config")
		})
	}
}
