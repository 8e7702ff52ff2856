package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/tourney/internal/factory"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/rating"
	"github.com/mcoot/tourney/internal/services/tournament"
)

// maxSimulationSteps bounds the number of results a single simulation reports
const maxSimulationSteps = 10000

// SimulateParams configures one simulated tournament
type SimulateParams struct {
	Name    string
	Format  model.Format
	Players []RosterPlayer
	// DrawRate is the percentage chance that a match allowing draws is drawn
	DrawRate int
}

// SimulationResult is the outcome of one simulated tournament
type SimulationResult struct {
	TournamentID model.TournamentID `json:"tournament_id"`
	Name         string             `json:"name"`
	Format       model.Format       `json:"format"`
	Matches      int                `json:"matches"`
	Winner       *model.Player      `json:"winner"`
	Standings    []model.Standing   `json:"standings,omitempty"`
}

func newSimulateCmd() *cobra.Command {
	var (
		formatName string
		players    int
		rosterPath string
		runs       int
		drawRate   int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run tournaments to completion with rating-weighted results",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := model.Format(strings.ToUpper(formatName))
			if !f.Valid() {
				return fmt.Errorf("unknown format %q: must be swiss, double_elimination or hybrid", formatName)
			}
			if runs < 1 {
				return errors.New("--runs must be at least 1")
			}
			if drawRate < 0 || drawRate > 100 {
				return errors.New("--draw-rate must be between 0 and 100")
			}

			params := SimulateParams{Name: "Simulated " + strings.ToLower(string(f)), Format: f, DrawRate: drawRate}
			if rosterPath != "" {
				roster, err := LoadRoster(rosterPath)
				if err != nil {
					return err
				}
				if roster.Name != "" {
					params.Name = roster.Name
				}
				params.Players = roster.Players
			} else {
				params.Players = generatePlayers(app, players)
			}

			results, err := runSimulations(cmd.Context(), app, params, runs)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if len(results) == 1 {
				out.Print(*results[0])
			} else {
				out.Print(results)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "swiss", "Tournament format: swiss, double_elimination, hybrid")
	cmd.Flags().IntVar(&players, "players", 8, "Number of generated players (ignored with --roster)")
	cmd.Flags().StringVar(&rosterPath, "roster", "", "YAML roster file")
	cmd.Flags().IntVar(&runs, "runs", 1, "Number of independent tournaments to run concurrently")
	cmd.Flags().IntVar(&drawRate, "draw-rate", 10, "Percentage chance of a draw where draws are allowed")

	return cmd
}

// generatePlayers makes n players with ratings spread around the default
func generatePlayers(a *factory.App, n int) []RosterPlayer {
	out := make([]RosterPlayer, n)
	for i := range out {
		out[i] = RosterPlayer{
			Name:   fmt.Sprintf("Player %d", i+1),
			Rating: model.DefaultRating - 200 + float64(a.Random.Intn(401)),
		}
	}
	return out
}

// runSimulations runs independent copies of the same tournament concurrently
func runSimulations(ctx context.Context, a *factory.App, params SimulateParams, runs int) ([]*SimulationResult, error) {
	results := make([]*SimulationResult, runs)
	g, ctx := errgroup.WithContext(ctx)
	for i := range runs {
		g.Go(func() error {
			res, err := Simulate(ctx, a, params)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Simulate registers the roster, runs one tournament to completion and
// reports its winner
func Simulate(ctx context.Context, a *factory.App, params SimulateParams) (*SimulationResult, error) {
	c := a.TournamentController

	ids := make([]model.PlayerID, 0, len(params.Players))
	for _, rp := range params.Players {
		p, err := c.RegisterPlayer(ctx, rp.Name, rp.Rating)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}

	t, err := c.CreateTournament(ctx, tournament.CreateTournamentParams{Name: params.Name, Format: params.Format})
	if err != nil {
		return nil, err
	}
	if _, err := c.AssignPlayers(ctx, t.ID, ids); err != nil {
		return nil, err
	}
	if t, err = c.StartTournament(ctx, t.ID); err != nil {
		return nil, err
	}

	for steps := 0; t.Status == model.TournamentStatusOngoing; steps++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if steps >= maxSimulationSteps {
			return nil, fmt.Errorf("tournament %s did not finish after %d results", t.ID, steps)
		}
		m := nextPlayable(t)
		if m == nil {
			return nil, fmt.Errorf("tournament %s has no playable match", t.ID)
		}
		if t, err = playMatch(ctx, a, t, m, params.DrawRate); err != nil {
			return nil, err
		}
	}

	winner, err := c.DetermineWinner(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	result := &SimulationResult{
		TournamentID: t.ID,
		Name:         t.Name,
		Format:       t.Format,
		Matches:      len(t.Matches),
		Winner:       winner,
	}
	if t.Format != model.FormatDoubleElimination {
		if result.Standings, err = c.Standings(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// nextPlayable returns the earliest match still waiting for a result
func nextPlayable(t *model.Tournament) *model.Match {
	var next *model.Match
	for _, m := range t.Matches {
		switch m.Status {
		case model.MatchStatusScheduled, model.MatchStatusWaiting, model.MatchStatusPending:
			if next == nil || m.Seq < next.Seq {
				next = m
			}
		}
	}
	return next
}

// playMatch begins m and reports a result drawn from the players' expected scores
func playMatch(ctx context.Context, a *factory.App, t *model.Tournament, m *model.Match, drawRate int) (*model.Tournament, error) {
	c := a.TournamentController
	if _, err := c.BeginMatch(ctx, m.ID); err != nil {
		return nil, err
	}

	p1, err := c.GetPlayer(ctx, m.Player1)
	if err != nil {
		return nil, err
	}
	p2, err := c.GetPlayer(ctx, m.Player2)
	if err != nil {
		return nil, err
	}

	score1, score2 := 0, 1
	switch {
	case drawRate > 0 && tournament.DrawAllowed(t.Format, m.Bracket) && a.Random.Intn(100) < drawRate:
		score1 = 1
	case a.Random.Intn(1000) < int(rating.ExpectedScore(p1.Rating, p2.Rating)*1000):
		score1, score2 = 1, 0
	}

	return c.InputResult(ctx, m.ID, score1, score2)
}
