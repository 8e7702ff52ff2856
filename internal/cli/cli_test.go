package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourney/internal/factory"
	"github.com/mcoot/tourney/internal/model"
)

type SimulateSuite struct {
	suite.Suite
	app *factory.TestApp
	ctx context.Context
}

func TestSimulateSuite(t *testing.T) {
	suite.Run(t, new(SimulateSuite))
}

func (s *SimulateSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.ctx = context.Background()
}

func (s *SimulateSuite) roster(n int) []RosterPlayer {
	out := make([]RosterPlayer, n)
	for i := range out {
		out[i] = RosterPlayer{Name: "Entrant", Rating: 1500 - float64(i)*50}
	}
	return out
}

func (s *SimulateSuite) TestSwissSimulationCompletes() {
	res, err := Simulate(s.ctx, s.app.App, SimulateParams{Name: "Club Night", Format: model.FormatSwiss, Players: s.roster(8)})

	s.Require().NoError(err)
	s.Equal("Club Night", res.Name)
	s.Equal(12, res.Matches)
	s.Require().NotNil(res.Winner)
	s.Len(res.Standings, 8)
	s.Equal(res.Winner.ID, res.Standings[0].PlayerID)

	t, err := s.app.TournamentController.GetTournament(s.ctx, res.TournamentID)
	s.Require().NoError(err)
	s.Equal(model.TournamentStatusCompleted, t.Status)
}

func (s *SimulateSuite) TestDoubleEliminationSimulationOmitsStandings() {
	res, err := Simulate(s.ctx, s.app.App, SimulateParams{Name: "Knockout", Format: model.FormatDoubleElimination, Players: s.roster(4)})

	s.Require().NoError(err)
	s.Nil(res.Standings)
	s.Contains([]int{6, 7}, res.Matches)
}

func (s *SimulateSuite) TestDrawsOnlyWhereAllowed() {
	// With the mock returning zero every roll is a draw where one is legal
	res, err := Simulate(s.ctx, s.app.App, SimulateParams{Name: "Drawish", Format: model.FormatHybrid, Players: s.roster(4), DrawRate: 100})

	s.Require().NoError(err)
	t, err := s.app.TournamentController.GetTournament(s.ctx, res.TournamentID)
	s.Require().NoError(err)
	for _, m := range t.Matches {
		if m.Bracket == model.BracketSwiss {
			s.True(m.IsDraw())
		} else {
			s.False(m.IsDraw())
		}
	}
}

func (s *SimulateSuite) TestInvalidRosterRejected() {
	_, err := Simulate(s.ctx, s.app.App, SimulateParams{Name: "Odd", Format: model.FormatSwiss, Players: s.roster(3)})

	s.ErrorIs(err, model.ErrOddPlayerCount)
}

func (s *SimulateSuite) TestConcurrentRuns() {
	results, err := runSimulations(s.ctx, s.app.App, SimulateParams{Name: "Batch", Format: model.FormatSwiss, Players: s.roster(4)}, 5)

	s.Require().NoError(err)
	s.Len(results, 5)
	seen := make(map[model.TournamentID]bool)
	for _, r := range results {
		s.False(seen[r.TournamentID])
		seen[r.TournamentID] = true
	}

	players, err := s.app.TournamentController.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(players, 20)
}

func (s *SimulateSuite) TestTextOutput() {
	res, err := Simulate(s.ctx, s.app.App, SimulateParams{Name: "Club Night", Format: model.FormatSwiss, Players: s.roster(4)})
	s.Require().NoError(err)

	var buf bytes.Buffer
	NewOutput("text", &buf).Print(*res)

	s.Contains(buf.String(), "Tournament: Club Night")
	s.Contains(buf.String(), "Standings:")
}

// Roster tests

type RosterSuite struct {
	suite.Suite
}

func TestRosterSuite(t *testing.T) {
	suite.Run(t, new(RosterSuite))
}

func (s *RosterSuite) TestParseRoster() {
	roster, err := ParseRoster(strings.NewReader(`
name: Spring Open
players:
  - name: Alice
    rating: 1650
  - name: Bob
`))

	s.Require().NoError(err)
	s.Equal("Spring Open", roster.Name)
	s.Equal([]RosterPlayer{{Name: "Alice", Rating: 1650}, {Name: "Bob"}}, roster.Players)
}

func (s *RosterSuite) TestParseRosterRejectsUnknownFields() {
	_, err := ParseRoster(strings.NewReader("players:\n  - name: Alice\n    elo: 1500\n"))
	s.Error(err)
}

func (s *RosterSuite) TestParseRosterRejectsMissingName() {
	_, err := ParseRoster(strings.NewReader("players:\n  - rating: 1500\n"))
	s.ErrorContains(err, "player 1 has no name")
}

func (s *RosterSuite) TestParseRosterRejectsEmptyInput() {
	_, err := ParseRoster(strings.NewReader(""))
	s.Error(err)
}

// Command tests

type CommandSuite struct {
	suite.Suite
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	s.T().Setenv("TOURNEY_STORAGE", "memory")
	s.T().Setenv("TOURNEY_OUTPUT", "text")
	s.T().Setenv("TOURNEY_LOG_LEVEL", "error")
}

func (s *CommandSuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CommandSuite) TestSimulateJSON() {
	out, err := s.run("simulate", "--format", "hybrid", "--players", "8", "-o", "json")
	s.Require().NoError(err)

	var res SimulationResult
	s.Require().NoError(json.Unmarshal([]byte(out), &res))
	s.Equal(model.FormatHybrid, res.Format)
	s.NotNil(res.Winner)
	s.Len(res.Standings, 8)
}

func (s *CommandSuite) TestSimulateFromRosterFile() {
	path := filepath.Join(s.T().TempDir(), "roster.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("name: Finals\nplayers:\n  - name: A\n  - name: B\n"), 0o600))

	out, err := s.run("simulate", "--roster", path, "--format", "double_elimination")

	s.Require().NoError(err)
	s.Contains(out, "Tournament: Finals")
	s.Contains(out, "Format: DOUBLE_ELIMINATION")
}

func (s *CommandSuite) TestSimulateRejectsUnknownFormat() {
	_, err := s.run("simulate", "--format", "round_robin")
	s.ErrorContains(err, "unknown format")
}

func (s *CommandSuite) TestHistoryRequiresKnownPlayer() {
	_, err := s.run("history", "--player", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *CommandSuite) TestListEmpty() {
	out, err := s.run("list")
	s.Require().NoError(err)
	s.Equal("No tournaments\n", out)
}

func (s *CommandSuite) TestSQLiteStorageFlag() {
	path := filepath.Join(s.T().TempDir(), "cli.db")

	_, err := s.run("simulate", "--storage", "sqlite", "--sqlite-path", path, "--players", "4")
	s.Require().NoError(err)

	out, err := s.run("list", "--storage", "sqlite", "--sqlite-path", path)
	s.Require().NoError(err)
	s.Contains(out, "Simulated swiss")
}

func (s *CommandSuite) TestRankingEmpty() {
	out, err := s.run("ranking")
	s.Require().NoError(err)
	s.Equal("No players\n", out)
}

func (s *CommandSuite) TestRankingAfterSimulation() {
	path := filepath.Join(s.T().TempDir(), "cli.db")

	_, err := s.run("simulate", "--storage", "sqlite", "--sqlite-path", path, "--players", "4")
	s.Require().NoError(err)

	out, err := s.run("players", "--storage", "sqlite", "--sqlite-path", path, "-o", "json")
	s.Require().NoError(err)

	var ranked []model.PlayerRanking
	s.Require().NoError(json.Unmarshal([]byte(out), &ranked))
	s.Require().Len(ranked, 4)
	for i, r := range ranked {
		s.Equal(i+1, r.Rank)
		if i > 0 {
			s.LessOrEqual(r.Rating, ranked[i-1].Rating)
		}
	}
}

// Config tests

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestEnvironmentOverridesDefaults() {
	s.T().Setenv("TOURNEY_STORAGE", "redis")
	s.T().Setenv("TOURNEY_REDIS_URL", "redis://cache:6379")

	c, err := DefaultConfig()
	s.Require().NoError(err)
	fc, err := c.FactoryConfig(nil)

	s.Require().NoError(err)
	s.Equal(factory.StorageTypeRedis, fc.StorageType)
	s.Require().NotNil(fc.RedisConfig)
	s.Equal("redis://cache:6379", fc.RedisConfig.URL)
}

func (s *ConfigSuite) TestMissingEnvFileIgnored() {
	s.NoError(LoadEnvFile(filepath.Join(s.T().TempDir(), ".env")))
}

func (s *ConfigSuite) TestMalformedEnvFileRejected() {
	path := filepath.Join(s.T().TempDir(), ".env")
	s.Require().NoError(os.WriteFile(path, []byte("TOURNEY_STORAGE=\"sqlite\n"), 0o600))

	err := LoadEnvFile(path)

	s.Require().Error(err)
	s.Contains(err.Error(), path)
}

func (s *ConfigSuite) TestUnknownStorageRejected() {
	c := &Config{Storage: "postgres", LogLevel: "info"}
	_, err := c.FactoryConfig(nil)
	s.Error(err)
}

func (s *ConfigSuite) TestInvalidLogLevel() {
	c := &Config{LogLevel: "loud"}
	_, err := c.NewLogger(&bytes.Buffer{})
	s.Error(err)
}
