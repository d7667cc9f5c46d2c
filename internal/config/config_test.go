package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanCE/digtrace/internal/resolver"
	"github.com/bryanCE/digtrace/pkg/roothints"
)

func TestDefaultMatchesResolverDefaults(t *testing.T) {
	cfg := Default()
	def := resolver.DefaultOptions()

	assert.Equal(t, def.AttemptTimeout, time.Duration(cfg.Resolver.AttemptTimeout))
	assert.Equal(t, def.Retries, cfg.Resolver.Retries)
	assert.Equal(t, def.MaxAliasChain, cfg.Resolver.MaxAliasChain)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digtrace.yaml")
	content := `
resolver:
  attempt_timeout: 1s
  retries: 5
  root_servers:
    - 198.41.0.4
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Second, time.Duration(cfg.Resolver.AttemptTimeout))
	assert.Equal(t, 5, cfg.Resolver.Retries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched fields keep their defaults
	assert.Equal(t, resolver.DefaultMaxZoneDepth, cfg.Resolver.MaxZoneDepth)

	opts := cfg.Options()
	require.Len(t, opts.Roots, 1)
	assert.Equal(t, "198.41.0.4", opts.Roots[0].String())
}

func TestLoadRejectsBadRootServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digtrace.yaml")
	content := "resolver:\n  root_servers:\n    - not-an-ip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsConflictingFamilies(t *testing.T) {
	cfg := Default()
	cfg.Resolver.IPv4Only = true
	cfg.Resolver.IPv6Only = true
	require.Error(t, cfg.Validate())
}

func TestOptionsSelectsRootsByFamily(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Options().Roots, len(roothints.Servers)*2)

	cfg.Resolver.IPv4Only = true
	assert.Equal(t, roothints.IPv4Addresses(), cfg.Options().Roots)

	cfg.Resolver.IPv4Only = false
	cfg.Resolver.IPv6Only = true
	assert.Equal(t, roothints.IPv6Addresses(), cfg.Options().Roots)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
