package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/session"
)

const sampleYAML = `
boards: 8
policy: fixed
default_vulnerability: both
seed: 42
budget:
  combined: 20000
web:
  addr: ":9000"
  session_idle_minutes: 30
presets:
  - name: opener
    description: South opens
    boards: 4
    hcp:
      mode: per_hand
      seats:
        S: {min: 12, max: "21"}
    distribution:
      mode: per_seat
      seats:
        S:
          H: {min: 5}
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridgegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Boards)
	assert.Equal(t, 120, cfg.Web.SessionIdle)
	assert.Equal(t, constraint.DefaultBudget, cfg.Budget)
	assert.NotEmpty(t, cfg.Presets)

	opts := cfg.SessionOptions()
	assert.Equal(t, session.PolicyRotating, opts.Policy)
	assert.Equal(t, bridge.VulNone, opts.DefaultVulnerability)
}

func TestBuiltinPresetsCompile(t *testing.T) {
	for _, p := range builtinPresets() {
		pred, diag, err := p.Constraints().Compile()
		require.NoError(t, err, p.Name)
		assert.Empty(t, diag, p.Name)
		assert.False(t, pred.NoOp(), p.Name)
	}
}

func TestParseFile(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Boards)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, ":9000", cfg.Web.Addr)
	assert.Equal(t, 30, cfg.Web.SessionIdle)
	assert.Equal(t, constraint.BudgetTable{Single: 5000, Combined: 20000, CombinedZeroSuit: 80000}, cfg.Budget)

	opts := cfg.SessionOptions()
	assert.Equal(t, session.PolicyFixed, opts.Policy)
	assert.Equal(t, bridge.VulBoth, opts.DefaultVulnerability)

	require.Len(t, cfg.Presets, 1)
	p, err := cfg.Preset("opener")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Boards)
	pred, diag, err := p.Constraints().Compile()
	require.NoError(t, err)
	assert.Empty(t, diag)
	assert.Equal(t, constraint.FilterPerSeat, pred.HCP.Kind)

	_, err = cfg.Preset("missing")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default().Presets, cfg.Presets)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	for name, body := range map[string]string{
		"unknown key":     "colour: blue\n",
		"boards too high": "boards: 40\n",
		"bad policy":      "policy: sometimes\n",
		"negative idle":   "web:\n  session_idle_minutes: -5\n",
		"bad mode":        "presets:\n  - name: x\n    hcp: {mode: sideways}\n",
		"nameless preset": "presets:\n  - description: y\n",
	} {
		_, err := Parse([]byte(body))
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "schema validation", name)
	}
}

func TestParseRejectsDuplicatePresets(t *testing.T) {
	_, err := Parse([]byte("presets:\n  - name: a\n  - name: a\n"))
	assert.ErrorContains(t, err, "duplicate preset")
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeFile(t, sampleYAML)
	t.Setenv(EnvBoards, "50")
	t.Setenv(EnvPolicy, "rotating")
	t.Setenv(EnvSeed, "7")
	t.Setenv(EnvWebAddr, "127.0.0.1:0")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Boards)
	assert.Equal(t, "rotating", cfg.Policy)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "127.0.0.1:0", cfg.Web.Addr)
}

func TestLoadFromEnvPath(t *testing.T) {
	t.Setenv(EnvConfig, writeFile(t, "boards: 3\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Boards)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Boards, cfg.Boards)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvSeed, "soon")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv(EnvSeed, "")
	t.Setenv(EnvVulnerability, "partial")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveMergesPresetAndExplicitClasses(t *testing.T) {
	cfg := Default()

	set, boards, err := cfg.Resolve("splinter", constraint.HCPSet{}, constraint.DistributionSet{})
	require.NoError(t, err)
	assert.Equal(t, 1, boards)
	assert.Equal(t, constraint.ModePerSeat, set.HCP.Mode)

	hcp := constraint.HCPSet{Mode: constraint.ModePerSeat, Seats: map[string]constraint.RawRange{"S": {Min: 20}}}
	set, _, err = cfg.Resolve("splinter", hcp, constraint.DistributionSet{})
	require.NoError(t, err)
	assert.Equal(t, 20, set.HCP.Seats["S"].Min)
	assert.Contains(t, set.Distribution.Seats, "S")

	set, boards, err = cfg.Resolve("", hcp, constraint.DistributionSet{})
	require.NoError(t, err)
	assert.Zero(t, boards)
	assert.Equal(t, constraint.Mode(""), set.Distribution.Mode)

	_, _, err = cfg.Resolve("nope", hcp, constraint.DistributionSet{})
	assert.ErrorIs(t, err, ErrUnknownPreset)
	_, _, err = cfg.Resolve("", constraint.HCPSet{Mode: "bogus"}, constraint.DistributionSet{})
	assert.Error(t, err)
}
