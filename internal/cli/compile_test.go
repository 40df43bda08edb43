package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/testutil"
)

func TestCompile_Text(t *testing.T) {
	stdout, _, err := execute(t, "compile", specsDir)
	require.NoError(t, err)

	want := "✓ Compiled 3 record(s), 1 rust conflict(s), 6 reference(s)\n\n" +
		"  failure_derive_quote: " + testutil.FailureDerive().Summary() + "\n" +
		"  failure_derive_rust: " + testutil.FailureBadRust().Summary() + "\n" +
		"  serde_bare: " + testutil.SerdeBare().Summary() + "\n\n"
	assert.Equal(t, want, stdout)
}

func TestCompile_JSON(t *testing.T) {
	stdout, _, err := execute(t, "compile", specsDir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ir.RecordVersion, resp.Data.Version)
	require.Len(t, resp.Data.Records, 3)

	for i, want := range testutil.Records() {
		got := resp.Data.Records[i]
		id, err := ir.RecordID(want)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, want.String(), got.Record.String())
	}
}

func TestCompile_OutputFileRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.json")

	stdout, _, err := execute(t, "compile", specsDir, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote records to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `">=1.0.3"`, "range operators are not HTML-escaped")

	result, err := readRecordsFile(out)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "failure_derive_quote", result.Records[0].Label)
	assert.Equal(t, testutil.FailureDerive().String(), result.Records[0].Record.String())
}

func TestCompile_OutputFileIsQueryable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "records.json")
	_, _, err := execute(t, "compile", specsDir, "-o", out)
	require.NoError(t, err)

	stdout, _, err := execute(t, "rust", "1.30.0", "--specs", out)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureBadRust().String(), stdout)
}

func TestReadRecordsFile_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"0","records":[]}`), 0o644))

	_, err := readRecordsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported record version")
}

func TestCompile_Errors(t *testing.T) {
	dir := writeSpec(t, "mixed.cue", badRangeSpec)

	stdout, _, err := execute(t, "compile", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Compilation failed")
	assert.Contains(t, stdout, "E202: bad_range: target.range")
}

func TestCompile_ErrorsJSON(t *testing.T) {
	dir := writeSpec(t, "mixed.cue", badRangeSpec)

	stdout, _, err := execute(t, "compile", dir, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []CLIError `json:"data"`
		Error  CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "E202", resp.Error.Code)
}

func TestCalculateStats(t *testing.T) {
	result := &CompilationResult{}
	for _, rec := range testutil.Records() {
		result.Records = append(result.Records, CompiledRecord{Record: rec})
	}

	assert.Equal(t, CompilationStats{
		RecordCount:    3,
		RustConflicts:  1,
		WithReason:     2,
		ReferenceCount: 6,
	}, calculateStats(result))
}
