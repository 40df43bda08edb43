package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incompat/internal/testutil"
)

func TestAffects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "name only",
			args: []string{"affects", "failure_derive"},
			want: testutil.FailureDerive().String() + "\n" + testutil.FailureBadRust().String(),
		},
		{
			name: "version in range",
			args: []string{"affects", "failure_derive", "1.0.3"},
			want: testutil.FailureDerive().String() + "\n" + testutil.FailureBadRust().String(),
		},
		{
			name: "version outside range",
			args: []string{"affects", "failure_derive", "1.0.7"},
			want: "No known incompatibilities (affects failure_derive 1.0.7).\n",
		},
		{
			name: "conflicting crate is not a target",
			args: []string{"affects", "quote"},
			want: "No known incompatibilities (affects quote).\n",
		},
		{
			name: "first only",
			args: []string{"affects", "failure_derive", "--first"},
			want: testutil.FailureDerive().String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append(tt.args, "--specs", specsDir)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestConflicts(t *testing.T) {
	stdout, _, err := execute(t, "conflicts", "quote", "--specs", specsDir)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureDerive().String(), stdout)

	stdout, _, err = execute(t, "conflicts", "quote", "1.0.2", "--specs", specsDir)
	require.NoError(t, err)
	assert.Equal(t, "No known incompatibilities (conflicts quote 1.0.2).\n", stdout)

	stdout, _, err = execute(t, "conflicts", "syn", "2.0.0", "--specs", specsDir)
	require.NoError(t, err)
	assert.Equal(t, testutil.SerdeBare().String(), stdout)
}

func TestRust(t *testing.T) {
	stdout, _, err := execute(t, "rust", "--specs", specsDir)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureBadRust().String(), stdout)

	stdout, _, err = execute(t, "rust", "1.31.0", "--specs", specsDir)
	require.NoError(t, err)
	assert.Equal(t, "No known incompatibilities (rust 1.31.0).\n", stdout)
}

func TestQuery_JSON(t *testing.T) {
	stdout, _, err := execute(t, "affects", "failure_derive", "1.0.3", "--specs", specsDir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "affects failure_derive 1.0.3", resp.Data.Query)
	assert.Equal(t, 2, resp.Data.Count)
	require.Len(t, resp.Data.Matches, 2)
	assert.Equal(t, testutil.FailureBadRust().String(), resp.Data.Matches[1].String())
}

func TestQuery_JSONNoMatchesIsEmptyList(t *testing.T) {
	stdout, _, err := execute(t, "rust", "1.40.0", "--specs", specsDir, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"matches": []`)
}

func TestQuery_FailOnMatch(t *testing.T) {
	_, _, err := execute(t, "affects", "failure_derive", "1.0.3", "--specs", specsDir, "--fail-on-match")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 known incompatibilities")

	_, _, err = execute(t, "affects", "failure_derive", "1.0.7", "--specs", specsDir, "--fail-on-match")
	assert.NoError(t, err)
}

func TestQuery_BadVersion(t *testing.T) {
	stdout, _, err := execute(t, "affects", "failure_derive", "one.two", "--specs", specsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeBadVersion+"]")
}

func TestQuery_InvalidDefinitions(t *testing.T) {
	dir := writeSpec(t, "mixed.cue", badRangeSpec)

	_, _, err := execute(t, "rust", "--specs", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestQuery_FromDB(t *testing.T) {
	db := importFixtures(t)

	stdout, _, err := execute(t, "affects", "failure_derive", "1.0.3", "--from-db", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureDerive().String()+"\n"+testutil.FailureBadRust().String(), stdout)

	stdout, _, err = execute(t, "conflicts", "quote", "--from-db", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureDerive().String(), stdout)

	stdout, _, err = execute(t, "rust", "1.30.0", "--from-db", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, testutil.FailureBadRust().String(), stdout)
}

func TestQuery_FromMissingDB(t *testing.T) {
	stdout, _, err := execute(t, "rust", "--from-db", "--db", "missing.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "database not found")
}
