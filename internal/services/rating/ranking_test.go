package rating

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourney/internal/model"
)

type RankingSuite struct {
	suite.Suite
}

func TestRankingSuite(t *testing.T) {
	suite.Run(t, new(RankingSuite))
}

func (s *RankingSuite) TestOrdersByRatingThenWinsThenLosses() {
	players := []*model.Player{
		{ID: "low", Rating: 1100, Wins: 9},
		{ID: "tied-fewer-wins", Rating: 1250, Wins: 2, Losses: 4},
		{ID: "top", Rating: 1300},
		{ID: "tied-more-losses", Rating: 1250, Wins: 3, Losses: 5},
		{ID: "tied-fewer-losses", Rating: 1250, Wins: 3, Losses: 1},
	}

	ranked := Rank(players)

	s.Require().Len(ranked, 5)
	var order []model.PlayerID
	for i, r := range ranked {
		s.Equal(i+1, r.Rank)
		order = append(order, r.PlayerID)
	}
	s.Equal([]model.PlayerID{"top", "tied-more-losses", "tied-fewer-losses", "tied-fewer-wins", "low"}, order)
	s.Equal(model.PlayerID("low"), players[0].ID, "input order is left untouched")
}

func (s *RankingSuite) TestFullTieFallsBackToID() {
	ranked := Rank([]*model.Player{
		{ID: "b", Rating: 1200},
		{ID: "a", Rating: 1200},
	})

	s.Equal(model.PlayerID("a"), ranked[0].PlayerID)
	s.Equal(model.PlayerID("b"), ranked[1].PlayerID)
}

func (s *RankingSuite) TestEmpty() {
	s.Empty(Rank(nil))
}
