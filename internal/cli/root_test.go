package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incompat/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "incompat", cmd.Use)
	assert.Equal(t, ir.ToolVersion, cmd.Version)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"validate", "compile", "show", "affects", "conflicts", "rust", "import", "test"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	flags := cmd.PersistentFlags()

	verbose := flags.Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := flags.Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	config := flags.Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	assert.NotNil(t, flags.Lookup("specs"))
	assert.NotNil(t, flags.Lookup("db"))
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "validate", specsDir, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "incompat.yaml")
	abs, err := filepath.Abs(specsDir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, []byte("specs: "+abs+"\nformat: json\n"), 0o644))

	stdout, _, err := execute(t, "show", "--config", cfg)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Count)
}

func TestRootCommand_FlagOverridesConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "incompat.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("format: json\n"), 0o644))

	stdout, _, err := execute(t, "validate", specsDir, "--config", cfg, "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 record(s) valid\n", stdout)
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "validate", specsDir, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_EnvironmentConfig(t *testing.T) {
	isolateConfig(t)
	t.Setenv("INCOMPAT_FORMAT", "json")

	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"validate", specsDir})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out.String()), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "validate", specsDir, "--verbose")
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 record(s) valid\n", stdout)
	assert.Contains(t, stderr, "Validating record: failure_derive_quote")
	assert.Contains(t, stderr, "configuration loaded")
}
