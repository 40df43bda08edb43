package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// specsDir is the shared definitions fixture at the repository root.
var specsDir = filepath.Join("..", "..", "testdata", "specs")

// scenariosDir is the shared scenario fixture at the repository root.
var scenariosDir = filepath.Join("..", "..", "testdata", "scenarios")

// isolateConfig keeps user and working-directory config files out of a test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"INCOMPAT_SPECS", "INCOMPAT_DB", "INCOMPAT_FORMAT", "INCOMPAT_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// execute runs the root command with args and returns stdout, stderr, and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateConfig(t)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeSpec writes a CUE file into a fresh directory and returns the directory.
func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir
}

// importFixtures imports the shared specs into a new database and returns its path.
func importFixtures(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "incompat.db")
	_, _, err := execute(t, "import", specsDir, "--db", db)
	require.NoError(t, err)
	return db
}
