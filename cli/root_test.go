package cli

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "marblering", cmd.Use)

	for _, name := range []string{"play", "solve", "show", "history"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPlayText(t *testing.T) {
	out, err := execute(t, "play", "--players", "9", "--last", "25")
	require.NoError(t, err)
	assert.Equal(t, "players: 9, marbles: 25, high score: 32 (elf 5)\n", out)
}

func TestPlayJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "play", "--players", "10", "--last", "1618")
	require.NoError(t, err)

	var v runView
	require.NoError(t, sonnet.Unmarshal([]byte(out), &v))
	assert.Equal(t, uint64(8317), v.HighScore)
	assert.Equal(t, 10, v.Winner)
	assert.Equal(t, uint64(1618), v.Marbles)
	assert.Len(t, v.Digest, 64)
}

func TestPlayRejectsBadGame(t *testing.T) {
	_, err := execute(t, "play", "--players", "0", "--last", "25")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPlayUnderflowIsRunFailure(t *testing.T) {
	cfg := writeTemp(t, "cfg.yaml", "ring:\n  magic: 2\n")
	_, err := execute(t, "--config", cfg, "play", "--players", "2", "--last", "10")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSolveWithConfig(t *testing.T) {
	input := writeTemp(t, "input.txt", "9;25\n10 players; last marble is worth 1618 points\n")
	cfg := writeTemp(t, "cfg.yaml", "game:\n  multiplier: 2\n")

	out, err := execute(t, "--config", cfg, "solve", input)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "players: 9, marbles: 25, high score: 32 (elf 5)", lines[0])
	assert.Equal(t, "players: 10, marbles: 1618, high score: 8317 (elf 10)", lines[1])
	assert.Contains(t, lines[2], "marbles: 50,")
	assert.Contains(t, lines[3], "marbles: 3236,")
}

func TestSolveBadInput(t *testing.T) {
	input := writeTemp(t, "input.txt", "nonsense\n")
	_, err := execute(t, "solve", input)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "solve", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPlayMetricsPortInUse(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer held.Close()

	out, err := execute(t, "play", "--players", "9", "--last", "25", "--metrics-addr", held.Addr().String())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, out)
}

func TestHistoryRecordsRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "play", "--players", "9", "--last", "25", "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "play", "--players", "17", "--last", "1104", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "high score: 2764")
	assert.Contains(t, lines[1], "high score: 32")

	out, err = execute(t, "--format", "json", "history", "--db", db, "--limit", "1")
	require.NoError(t, err)
	var v runView
	require.NoError(t, sonnet.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, 17, v.Players)
}

func TestHistoryNeedsDatabase(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShowGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"show_22", []string{"show", "--marbles", "22"}},
		{"show_25", []string{"show", "--marbles", "25"}},
		{"show_23_json", []string{"--format", "json", "show", "--marbles", "23"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, tc.args...)
			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(out))
		})
	}
}
