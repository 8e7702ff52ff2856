package swiss

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourney/internal/dependencies/mocks"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/format"
	"github.com/mcoot/tourney/internal/services/rating"
	"github.com/mcoot/tourney/internal/testutil"
)

type EngineSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.engine = New(rating.New(), s.random, testutil.NopLogger())
}

func (s *EngineSuite) start(n int) *format.State {
	st := testutil.NewState(model.FormatSwiss, n, s.clock.Now())
	s.Require().NoError(s.engine.Initialize(st))
	return st
}

func (s *EngineSuite) play(st *format.State, winner, loser model.PlayerID) {
	m := testutil.FindMatch(st.Tournament, winner, loser)
	s.Require().NotNil(m, "no open match between %s and %s", winner, loser)
	if m.Player1 == winner {
		testutil.Complete(m, 2, 0)
	} else {
		testutil.Complete(m, 0, 2)
	}
	s.Require().NoError(s.engine.ReceiveMatchResult(st, m))
}

func (s *EngineSuite) draw(st *format.State, a, b model.PlayerID) {
	m := testutil.FindMatch(st.Tournament, a, b)
	s.Require().NotNil(m)
	testutil.Complete(m, 1, 1)
	s.Require().NoError(s.engine.ReceiveMatchResult(st, m))
}

func (s *EngineSuite) pairings(st *format.State, round int) [][2]model.PlayerID {
	var out [][2]model.PlayerID
	for _, m := range st.Tournament.MatchesInRound(model.BracketSwiss, round) {
		out = append(out, [2]model.PlayerID{m.Player1, m.Player2})
	}
	return out
}

// Initialize tests

func (s *EngineSuite) TestTotalRounds() {
	cases := map[int]int{2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 16: 4, 32: 5}
	for players, rounds := range cases {
		s.Equal(rounds, TotalRounds(players), "players=%d", players)
	}
}

func (s *EngineSuite) TestInitializePairsAdjacentPlayers() {
	st := s.start(4)

	t := st.Tournament
	s.Equal(2, t.TotalSwissRounds)
	s.Equal(1, t.CurrentRound)
	s.Equal([][2]model.PlayerID{{"P1", "P2"}, {"P3", "P4"}}, s.pairings(st, 1))
	for _, m := range t.Matches {
		s.Equal(model.MatchStatusScheduled, m.Status)
		s.Equal(model.BracketSwiss, m.Bracket)
	}
}

func (s *EngineSuite) TestInitializeShufflesBeforePairing() {
	s.random.QueuePermutation(3, 1, 0, 2)

	st := s.start(4)

	s.Equal([][2]model.PlayerID{{"P4", "P2"}, {"P1", "P3"}}, s.pairings(st, 1))
}

func (s *EngineSuite) TestInitializeGivesByeToLeftoverPlayer() {
	st := s.start(5)

	s.Equal(3, st.Tournament.TotalSwissRounds)
	s.Len(st.Tournament.Matches, 3)
	bye := st.Tournament.Matches[2]
	s.Equal(model.MatchStatusBye, bye.Status)
	s.Equal(model.PlayerID("P5"), bye.Player1)
	s.True(bye.IsBye())
	s.InDelta(PointsBye, st.Players["P5"].Points, 1e-9)
}

// Result intake tests

func (s *EngineSuite) TestRoundWaitsForEveryResult() {
	st := s.start(4)

	s.play(st, "P1", "P2")

	s.Len(st.Tournament.Matches, 2)
	s.Equal(1, st.Tournament.CurrentRound)
	s.Equal(0, st.Tournament.RoundsCompleted)
}

func (s *EngineSuite) TestWinnersMeetInSecondRound() {
	st := s.start(4)

	s.play(st, "P1", "P2")
	s.play(st, "P3", "P4")

	s.Equal(2, st.Tournament.CurrentRound)
	s.Equal(1, st.Tournament.RoundsCompleted)
	s.Equal([][2]model.PlayerID{{"P1", "P3"}, {"P2", "P4"}}, s.pairings(st, 2))
}

func (s *EngineSuite) TestPointsAndRatingsAwarded() {
	st := s.start(4)

	s.play(st, "P1", "P2")
	s.draw(st, "P3", "P4")

	s.InDelta(1.0, st.Players["P1"].Points, 1e-9)
	s.InDelta(0.0, st.Players["P2"].Points, 1e-9)
	s.InDelta(0.5, st.Players["P3"].Points, 1e-9)
	s.InDelta(0.5, st.Players["P4"].Points, 1e-9)
	s.Greater(st.Players["P1"].Rating, model.DefaultRating)
	s.Less(st.Players["P2"].Rating, model.DefaultRating)
	s.InDelta(model.DefaultRating, st.Players["P3"].Rating, 1e-9)
	s.Len(st.RatingChanges, 4)
}

func (s *EngineSuite) TestFinalRoundCompletesTournament() {
	st := s.start(4)

	s.play(st, "P1", "P2")
	s.play(st, "P3", "P4")
	s.play(st, "P3", "P1")
	s.play(st, "P2", "P4")

	s.Equal(model.TournamentStatusCompleted, st.Tournament.Status)
	s.Equal(s.clock.Now(), st.Tournament.CompletedAt)
	s.Len(st.Tournament.Matches, 4)

	winner, err := s.engine.DetermineWinner(st)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("P3"), winner)
}

func (s *EngineSuite) TestTieAtTopSchedulesDecider() {
	st := s.start(2)

	s.draw(st, "P1", "P2")

	s.Equal(model.TournamentStatusOngoing, st.Tournament.Status)
	s.Require().Len(st.Tournament.Matches, 2)
	decider := st.Tournament.Matches[1]
	s.Equal(model.BracketGrandFinal, decider.Bracket)
	s.Equal(2, decider.Round)

	_, err := s.engine.DetermineWinner(st)
	s.ErrorIs(err, model.ErrTournamentNotCompleted)

	s.play(st, "P2", "P1")

	s.Equal(model.TournamentStatusCompleted, st.Tournament.Status)
	s.InDelta(0.5, st.Players["P1"].Points, 1e-9)
	s.InDelta(0.5, st.Players["P2"].Points, 1e-9)
	winner, err := s.engine.DetermineWinner(st)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("P2"), winner)
}

func (s *EngineSuite) TestRejectsEliminationBracketMatch() {
	st := s.start(4)
	m := st.Tournament.Matches[0]
	m.Bracket = model.BracketUpper
	testutil.Complete(m, 1, 0)

	err := s.engine.ReceiveMatchResult(st, m)

	s.ErrorIs(err, model.ErrUnexpectedBracket)
}

// Standings tests

func (s *EngineSuite) TestStandingsTieBreaks() {
	st := s.start(4)
	s.play(st, "P1", "P2")
	s.play(st, "P3", "P4")
	s.play(st, "P3", "P1")
	s.play(st, "P2", "P4")

	rows := Standings(st)

	s.Require().Len(rows, 4)
	order := []model.PlayerID{rows[0].PlayerID, rows[1].PlayerID, rows[2].PlayerID, rows[3].PlayerID}
	s.Equal([]model.PlayerID{"P3", "P1", "P2", "P4"}, order)

	s.Equal(1, rows[0].Rank)
	s.InDelta(2.0, rows[0].Points, 1e-9)
	s.Equal(2, rows[0].Wins)

	// P1 and P2 are level on points; P1 met the stronger opponents
	s.InDelta(1.0, rows[1].Points, 1e-9)
	s.InDelta(3.0, rows[1].Buchholz, 1e-9)
	s.InDelta(1.0, rows[1].SonnebornBerger, 1e-9)
	s.InDelta(1.0, rows[2].Points, 1e-9)
	s.InDelta(1.0, rows[2].Buchholz, 1e-9)
	s.InDelta(0.0, rows[2].SonnebornBerger, 1e-9)
	s.Equal(1, rows[2].Losses)
}

func (s *EngineSuite) TestBuchholzFollowsLaterResults() {
	st := s.start(4)
	s.play(st, "P1", "P2")
	s.play(st, "P3", "P4")

	before := Standings(st)
	s.Equal(model.PlayerID("P1"), before[0].PlayerID)
	s.InDelta(0.0, before[0].Buchholz, 1e-9)

	s.play(st, "P2", "P4")

	after := Standings(st)
	for _, row := range after {
		if row.PlayerID == "P1" {
			s.InDelta(1.0, row.Buchholz, 1e-9)
		}
	}
}

func (s *EngineSuite) TestStandingsCountDraws() {
	st := s.start(4)
	s.draw(st, "P1", "P2")
	s.play(st, "P3", "P4")

	rows := Standings(st)

	s.Equal(model.PlayerID("P3"), rows[0].PlayerID)
	for _, row := range rows[1:3] {
		s.Equal(1, row.Draws)
		s.InDelta(0.5, row.Points, 1e-9)
		s.InDelta(0.25, row.SonnebornBerger, 1e-9)
	}
}
