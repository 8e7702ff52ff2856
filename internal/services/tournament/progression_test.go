package tournament

import (
	"fmt"
	"math/rand/v2"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/swiss"
	"github.com/mcoot/tourney/internal/testutil"
)

// playOut reports random results until the tournament completes
func (s *ControllerSuite) playOut(t *model.Tournament, rng *rand.Rand) *model.Tournament {
	for steps := 0; t.Status == model.TournamentStatusOngoing; steps++ {
		s.Require().Less(steps, 1000, "tournament did not complete")
		open := testutil.OpenMatches(t)
		s.Require().NotEmpty(open, "ongoing tournament has no open matches")
		m := open[rng.IntN(len(open))]

		s.assertRoundsGated(t, m)

		_, err := s.controller.BeginMatch(s.ctx, m.ID)
		s.Require().NoError(err)
		p1, p2 := 2, 1
		switch {
		case DrawAllowed(t.Format, m.Bracket) && rng.IntN(5) == 0:
			p1, p2 = 1, 1
		case rng.IntN(2) == 0:
			p1, p2 = 1, 2
		}
		t, err = s.controller.InputResult(s.ctx, m.ID, p1, p2)
		s.Require().NoError(err)
	}
	return t
}

// assertRoundsGated checks that an open Swiss match never coexists with an
// unresolved match from an earlier Swiss round
func (s *ControllerSuite) assertRoundsGated(t *model.Tournament, open *model.Match) {
	if open.Bracket != model.BracketSwiss {
		return
	}
	for _, m := range t.Matches {
		if m.Bracket == model.BracketSwiss && m.Round < open.Round {
			s.True(m.IsResolved(), "round %d open while round %d unresolved", open.Round, m.Round)
		}
	}
}

func (s *ControllerSuite) TestSwissProgressionProperties() {
	for _, n := range []int{2, 4, 6, 8, 10, 12, 16} {
		for seed := range uint64(4) {
			s.Run(fmt.Sprintf("players=%d/seed=%d", n, seed), func() {
				s.SetupTest()
				rng := rand.New(rand.NewPCG(seed, uint64(n)))
				t := s.playOut(s.startTournament(model.FormatSwiss, n), rng)

				s.Equal(swiss.TotalRounds(n), t.RoundsCompleted)
				seen := make(map[[2]model.PlayerID]bool)
				for round := 1; round <= t.TotalSwissRounds; round++ {
					appearances := make(map[model.PlayerID]int)
					for _, m := range t.MatchesInRound(model.BracketSwiss, round) {
						appearances[m.Player1]++
						if m.IsBye() {
							continue
						}
						appearances[m.Player2]++
						key := [2]model.PlayerID{min(m.Player1, m.Player2), max(m.Player1, m.Player2)}
						s.False(seen[key], "rematch %v", key)
						seen[key] = true
					}
					s.Len(appearances, n, "round %d", round)
					for id, count := range appearances {
						s.Equal(1, count, "%s in round %d", id, round)
					}
				}

				winner, err := s.controller.DetermineWinner(s.ctx, t.ID)
				s.Require().NoError(err)
				s.True(t.HasPlayer(winner.ID))
			})
		}
	}
}

func (s *ControllerSuite) TestDoubleEliminationProgressionProperties() {
	for _, n := range []int{2, 4, 8, 16, 32} {
		for seed := range uint64(4) {
			s.Run(fmt.Sprintf("players=%d/seed=%d", n, seed), func() {
				s.SetupTest()
				rng := rand.New(rand.NewPCG(seed, uint64(n)))
				t := s.playOut(s.startTournament(model.FormatDoubleElimination, n), rng)

				s.Contains([]int{2*n - 2, 2*n - 1}, len(t.Matches))
				s.Empty(t.WinnersBracket)
				s.Empty(t.LosersBracket)

				winner, err := s.controller.DetermineWinner(s.ctx, t.ID)
				s.Require().NoError(err)

				losses := make(map[model.PlayerID]int)
				for _, m := range t.Matches {
					s.Equal(model.MatchStatusCompleted, m.Status)
					s.False(m.IsDraw())
					losses[m.Loser()]++
				}
				for _, id := range t.Players {
					if id == winner.ID {
						s.LessOrEqual(losses[id], 1)
						continue
					}
					s.Equal(2, losses[id], "player %s", id)
				}
			})
		}
	}
}

func (s *ControllerSuite) TestHybridProgressionProperties() {
	for _, n := range []int{4, 8, 16} {
		for seed := range uint64(4) {
			s.Run(fmt.Sprintf("players=%d/seed=%d", n, seed), func() {
				s.SetupTest()
				rng := rand.New(rand.NewPCG(seed, uint64(n)))
				t := s.playOut(s.startTournament(model.FormatHybrid, n), rng)

				s.True(t.EliminationStarted)
				entrants := make(map[model.PlayerID]bool)
				for _, m := range t.Matches {
					if m.Bracket == model.BracketUpper && m.Round == 1 {
						entrants[m.Player1] = true
						entrants[m.Player2] = true
					}
				}
				s.Len(entrants, n/2)

				winner, err := s.controller.DetermineWinner(s.ctx, t.ID)
				s.Require().NoError(err)
				s.True(entrants[winner.ID])

				rows, err := s.controller.Standings(s.ctx, t.ID)
				s.Require().NoError(err)
				s.Len(rows, n)
				swissMatches := 0
				for _, m := range t.Matches {
					if m.Bracket == model.BracketSwiss {
						swissMatches++
					}
				}
				s.Equal(swiss.TotalRounds(n)*n/2, swissMatches)
			})
		}
	}
}
