package swiss

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourney/internal/model"
)

type PairingSuite struct {
	suite.Suite
}

func TestPairingSuite(t *testing.T) {
	suite.Run(t, new(PairingSuite))
}

func played(pairs ...[2]model.PlayerID) history {
	h := make(history)
	for _, p := range pairs {
		h.add(p[0], p[1])
	}
	return h
}

func (s *PairingSuite) TestPairsByRankingWithoutHistory() {
	ranked := []model.PlayerID{"A", "B", "C", "D"}

	pairs := pairRound(ranked, played(), nil)

	s.Equal([]pair{{"A", "B"}, {"C", "D"}}, pairs)
}

func (s *PairingSuite) TestSearchAvoidsRematchWhereGreedyWouldFail() {
	ranked := []model.PlayerID{"A", "B", "C", "D"}
	h := played([2]model.PlayerID{"C", "D"}, [2]model.PlayerID{"A", "D"})

	s.Equal([]pair{{"A", "B"}, {"C", ""}, {"D", ""}}, greedyPairing(ranked, h, nil))
	s.Equal([]pair{{"A", "C"}, {"B", "D"}}, pairRound(ranked, h, nil))
}

func (s *PairingSuite) TestFallsBackToByeWhenNoOpponentLeft() {
	ranked := []model.PlayerID{"A", "B", "C", "D"}
	h := played(
		[2]model.PlayerID{"A", "B"},
		[2]model.PlayerID{"A", "C"},
		[2]model.PlayerID{"A", "D"},
	)

	pairs := pairRound(ranked, h, nil)

	s.Equal([]pair{{"A", ""}, {"B", "C"}, {"D", ""}}, pairs)
}

func (s *PairingSuite) TestOddCountByeGoesToLowestWithoutPreviousBye() {
	ranked := []model.PlayerID{"A", "B", "C", "D", "E"}
	byes := map[model.PlayerID]bool{"E": true}

	pairs := pairRound(ranked, played(), byes)

	s.Equal([]pair{{"A", "B"}, {"C", "E"}, {"D", ""}}, pairs)
}

func (s *PairingSuite) TestOddCountByeSkipsCandidateWithoutLegalPairing() {
	ranked := []model.PlayerID{"A", "B", "C"}
	h := played([2]model.PlayerID{"A", "B"})

	pairs := pairRound(ranked, h, nil)

	s.Equal([]pair{{"A", "C"}, {"B", ""}}, pairs)
}

func (s *PairingSuite) TestGreedyFallbackAvoidsRepeatBye() {
	ranked := []model.PlayerID{"A", "B", "C", "D", "E"}
	// A and B have met everyone, so no bye candidate leaves a rematch-free pairing
	h := played(
		[2]model.PlayerID{"A", "B"},
		[2]model.PlayerID{"A", "C"},
		[2]model.PlayerID{"A", "D"},
		[2]model.PlayerID{"A", "E"},
		[2]model.PlayerID{"B", "C"},
		[2]model.PlayerID{"B", "D"},
		[2]model.PlayerID{"B", "E"},
	)
	byes := map[model.PlayerID]bool{"E": true}

	pairs := pairRound(ranked, h, byes)

	s.Equal([]pair{{"A", ""}, {"B", ""}, {"C", "E"}, {"D", ""}}, pairs)
}

func (s *PairingSuite) TestNoRematchAcrossManyRosters() {
	for n := 4; n <= 16; n += 2 {
		ranked := make([]model.PlayerID, n)
		for i := range ranked {
			ranked[i] = model.PlayerID(fmt.Sprintf("p%02d", i))
		}
		// everyone has already played their ranking neighbour
		h := make(history)
		for i := 0; i+1 < n; i += 2 {
			h.add(ranked[i], ranked[i+1])
		}

		pairs := pairRound(ranked, h, nil)

		s.Len(pairs, n/2, "n=%d", n)
		for _, p := range pairs {
			s.NotEmpty(p.second, "n=%d", n)
			s.False(h.played(p.first, p.second), "n=%d rematch %s-%s", n, p.first, p.second)
		}
	}
}
