package impute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "impute.toml")
	contents := `
min_minor_count = 12
max_inbred_error = 0.05
hybrid = false
threads = 4
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o644))
	config, err := LoadConfig(filename)
	require.NoError(t, err)
	expected := DefaultConfig()
	expected.MinMinorCount = 12
	expected.MaxInbredError = 0.05
	expected.Hybrid = false
	expected.Threads = 4
	assert.Equal(t, expected, config)

	require.NoError(t, os.WriteFile(filename, []byte("max_hypotheses = 0\n"), 0o644))
	_, err = LoadConfig(filename)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, os.WriteFile(filename, []byte("max_hypotheses = \"many\"\n"), 0o644))
	_, err = LoadConfig(filename)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	for _, modify := range []func(*Config){
		func(c *Config) { c.MinMinorCount = 0 },
		func(c *Config) { c.MajorMinorRatio = 0 },
		func(c *Config) { c.MaxInbredError = 0 },
		func(c *Config) { c.MaxInbredError = 1 },
		func(c *Config) { c.MinTestSites = 0 },
		func(c *Config) { c.MinSitesPresent = -1 },
		func(c *Config) { c.MismatchCutoff = -1 },
		func(c *Config) { c.MinInformativeSites = 0 },
		func(c *Config) { c.Threads = -2 },
	} {
		config := DefaultConfig()
		modify(&config)
		assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
	}
}
