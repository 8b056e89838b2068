package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	argerrors "github.com/argus-dev/argus/internal/errors"
)

func TestNew_ProducesValidDefaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60, cfg.Search.RRFConstant)
	assert.Equal(t, "stdio", cfg.Server.Transport)
}

func TestLoadFromString_EmptyGivesDefaults(t *testing.T) {
	cfg, err := LoadFromString("")
	require.NoError(t, err)
	assert.Equal(t, New().Search.BM25Weight, cfg.Search.BM25Weight)
}

func TestLoadFromString_ParsesMinimalTOML(t *testing.T) {
	cfg, err := LoadFromString(`
[embedding]
provider = "voyage"
model = "voyage-code-3"
`)
	require.NoError(t, err)
	assert.Equal(t, "voyage", cfg.Embedding.Provider)
	assert.Equal(t, "voyage-code-3", cfg.Embedding.Model)
}

func TestLoadFromString_ParsesFullTOML(t *testing.T) {
	cfg, err := LoadFromString(`
version = 1
log_level = "debug"

[paths]
exclude = ["vendor/"]

[embedding]
provider = "voyage"
api_key = "secret"
model = "voyage-code-3"
dimensions = 1024

[search]
bm25_weight = 0.5
semantic_weight = 0.5
rrf_constant = 60
max_results = 10

[performance]
workers = 8
max_file_size_bytes = 2097152

[server]
transport = "stdio"
`)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"vendor/"}, cfg.Paths.Exclude)
	assert.Equal(t, "secret", cfg.Embedding.APIKey)
	assert.Equal(t, 1024, cfg.Embedding.Dimensions)
	assert.Equal(t, 8, cfg.Performance.Workers)
}

func TestLoadFromString_InvalidTOMLReturnsError(t *testing.T) {
	_, err := LoadFromString("this is not = [valid toml")
	require.Error(t, err)
}

func TestValidate_RejectsNegativeWeights(t *testing.T) {
	cfg := New()
	cfg.Search.BM25Weight = -1
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownTransport(t *testing.T) {
	cfg := New()
	cfg.Server.Transport = "carrier-pigeon"
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "shout"
	require.Error(t, cfg.Validate())
}

func TestLoad_ReadsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	content := "log_level = \"debug\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestResolveAPIKey_FallsBackToEnvVar(t *testing.T) {
	cfg := New()
	cfg.Embedding.Provider = "voyage"
	t.Setenv("VOYAGE_API_KEY", "from-env")

	key, err := cfg.ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestResolveAPIKey_MissingFailsWithSuggestion(t *testing.T) {
	cfg := New()
	cfg.Embedding.Provider = "nonexistent-provider"
	t.Setenv("NONEXISTENT-PROVIDER_API_KEY", "")

	_, err := cfg.ResolveAPIKey()
	require.Error(t, err)
	var ae *argerrors.ArgusError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "check API key", ae.Suggestion)
}

func TestFindProjectRoot_FindsGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := FindProjectRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}
