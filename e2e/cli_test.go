package e2e_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliRunner manages CLI binary execution against one sqlite database
type cliRunner struct {
	binaryPath string
	dbPath     string
}

func newCLIRunner(t *testing.T) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "tourney-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/tourney")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		dbPath:     filepath.Join(t.TempDir(), "tourney.db"),
	}
}

// run executes the binary and returns stdout and stderr separately
func (r *cliRunner) run(args ...string) (string, string, error) {
	fullArgs := append([]string{
		"--storage", "sqlite",
		"--sqlite-path", r.dbPath,
		"--log-level", "error",
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "TOURNEY_STORAGE=", "TOURNEY_OUTPUT=")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// Response types for JSON parsing
type playerResponse struct {
	ID     string
	Name   string
	Rating float64
	Wins   int
}

type simulationResponse struct {
	TournamentID string          `json:"tournament_id"`
	Name         string          `json:"name"`
	Format       string          `json:"format"`
	Matches      int             `json:"matches"`
	Winner       *playerResponse `json:"winner"`
	Standings    []struct {
		Rank     int
		PlayerID string
		Points   float64
	} `json:"standings"`
}

type ratingChangeResponse struct {
	PlayerID  string
	MatchID   string
	OldRating float64
	NewRating float64
	Reason    string
}

type summaryResponse struct {
	ID          string
	Name        string
	Format      string
	Status      string
	PlayerCount int
}

func TestCLI_SimulateSwiss(t *testing.T) {
	cli := newCLIRunner(t)

	output, stderr, err := cli.run("simulate", "--format", "swiss", "--players", "8")
	require.NoError(t, err, "stderr: %s", stderr)

	var result simulationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "SWISS", result.Format)
	assert.GreaterOrEqual(t, result.Matches, 12)
	require.NotNil(t, result.Winner)
	assert.Len(t, result.Standings, 8)
}

func TestCLI_HistoryAfterSimulation(t *testing.T) {
	cli := newCLIRunner(t)

	output, stderr, err := cli.run("simulate", "--format", "double_elimination", "--players", "4")
	require.NoError(t, err, "stderr: %s", stderr)
	var result simulationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	require.NotNil(t, result.Winner)

	// History is read back from the database by a fresh process
	output, stderr, err = cli.run("history", "--player", result.Winner.ID)
	require.NoError(t, err, "stderr: %s", stderr)

	var history []ratingChangeResponse
	require.NoError(t, json.Unmarshal([]byte(output), &history))
	require.NotEmpty(t, history)
	for _, c := range history {
		assert.Equal(t, result.Winner.ID, c.PlayerID)
		assert.True(t, strings.HasPrefix(c.Reason, "Match against "))
	}
	assert.InDelta(t, result.Winner.Rating, history[len(history)-1].NewRating, 1e-9)
}

func TestCLI_ListAcrossRuns(t *testing.T) {
	cli := newCLIRunner(t)

	_, stderr, err := cli.run("simulate", "--format", "hybrid", "--players", "8", "--runs", "3")
	require.NoError(t, err, "stderr: %s", stderr)

	output, stderr, err := cli.run("list")
	require.NoError(t, err, "stderr: %s", stderr)

	var summaries []summaryResponse
	require.NoError(t, json.Unmarshal([]byte(output), &summaries))
	assert.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.Equal(t, "HYBRID", s.Format)
		assert.Equal(t, "COMPLETED", s.Status)
		assert.Equal(t, 8, s.PlayerCount)
	}
}

func TestCLI_ErrorHandling(t *testing.T) {
	cli := newCLIRunner(t)

	// Double elimination needs a power-of-two field
	_, stderr, err := cli.run("simulate", "--format", "double_elimination", "--players", "6")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(stderr), "power of two")

	_, stderr, err = cli.run("history", "--player", "missing")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(stderr), "not found")
}
