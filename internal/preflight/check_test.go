package preflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-dev/argus/internal/config"
)

func TestCheckAPIKeyFailsWithoutKey(t *testing.T) {
	t.Setenv("VOYAGE_API_KEY", "")
	cfg := config.New()
	cfg.Embedding.Provider = "voyage"
	r := checkAPIKey(cfg)
	assert.Equal(t, StatusFail, r.Status)
	assert.True(t, r.Required)
}

func TestCheckAPIKeyPassesWithEnvKey(t *testing.T) {
	t.Setenv("VOYAGE_API_KEY", "key")
	cfg := config.New()
	cfg.Embedding.Provider = "voyage"
	r := checkAPIKey(cfg)
	assert.Equal(t, StatusPass, r.Status)
}

func TestCheckWriteAccessCreatesArgusDir(t *testing.T) {
	dir := t.TempDir()
	r := checkWriteAccess(dir)
	assert.Equal(t, StatusPass, r.Status)
}

func TestAnyCriticalDetectsRequiredFailure(t *testing.T) {
	results := []Result{
		{Name: "a", Status: StatusPass, Required: true},
		{Name: "b", Status: StatusFail, Required: true},
	}
	assert.True(t, AnyCritical(results))
}

func TestAnyCriticalIgnoresOptionalFailure(t *testing.T) {
	results := []Result{
		{Name: "a", Status: StatusFail, Required: false},
	}
	assert.False(t, AnyCritical(results))
}

func TestRunOrdersChecks(t *testing.T) {
	t.Setenv("VOYAGE_API_KEY", "key")
	dir := t.TempDir()
	cfg := config.New()
	results := Run(dir, cfg)
	require.Len(t, results, 3)
	assert.Equal(t, "embedding API key", results[0].Name)
	assert.Equal(t, "write access to .argus/", results[1].Name)
	assert.Equal(t, "disk space", results[2].Name)
}
