// Package storagetest holds the behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/storage"
)

// Suite exercises the storage contract. Backends embed it and assign Storage
// in their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) player(id string) *model.Player {
	return &model.Player{
		ID:        model.PlayerID(id),
		Name:      "Player " + id,
		Rating:    model.DefaultRating,
		Status:    model.PlayerStatusQualified,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func (s *Suite) tournament(id string, created time.Time) *model.Tournament {
	return &model.Tournament{
		ID:      model.TournamentID(id),
		Name:    "Open " + id,
		Format:  model.FormatSwiss,
		Status:  model.TournamentStatusOngoing,
		Band:    model.RatingBand{Min: 1000, Max: 2000},
		Players: []model.PlayerID{"p1", "p2"},
		Matches: []*model.Match{
			{
				ID:           model.MatchID(id + "-m1"),
				TournamentID: model.TournamentID(id),
				Seq:          1,
				Round:        1,
				Bracket:      model.BracketSwiss,
				Status:       model.MatchStatusScheduled,
				Player1:      "p1",
				Player2:      "p2",
				MatchDate:    created,
			},
		},
		CurrentRound:     1,
		TotalSwissRounds: 1,
		NextMatchSeq:     1,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	p := s.player("p1")
	p.Wins = 3
	p.Points = 1.5
	p.Bracket = model.BracketSideLower

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(p, got)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestSavePlayerOverwrites() {
	p := s.player("p1")
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	p.Rating = 1333.5
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.InDelta(1333.5, got.Rating, 1e-9)
}

func (s *Suite) TestGetPlayersKeepsRequestOrder() {
	for _, id := range []string{"p1", "p2", "p3"} {
		s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player(id)))
	}

	got, err := s.Storage.GetPlayers(s.Ctx, []model.PlayerID{"p3", "p1"})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(model.PlayerID("p3"), got[0].ID)
	s.Equal(model.PlayerID("p1"), got[1].ID)

	_, err = s.Storage.GetPlayers(s.Ctx, []model.PlayerID{"p1", "nope"})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestListPlayersSortedByID() {
	for _, id := range []string{"p2", "p3", "p1"} {
		s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player(id)))
	}

	got, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(model.PlayerID("p1"), got[0].ID)
	s.Equal(model.PlayerID("p3"), got[2].ID)
}

// Tournament tests

func (s *Suite) TestSaveAndGetTournament() {
	t := s.tournament("t1", baseTime)
	p1, p2 := s.player("p1"), s.player("p2")
	p1.Points = 1

	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, t, []*model.Player{p1, p2}))
	s.Equal(int64(1), t.Version)

	got, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal(t, got)

	stored, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.InDelta(1.0, stored.Points, 1e-9)
}

func (s *Suite) TestGetTournamentNotFound() {
	_, err := s.Storage.GetTournament(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrTournamentNotFound)
}

func (s *Suite) TestSaveTournamentRejectsStaleVersion() {
	t := s.tournament("t1", baseTime)
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, t, nil))

	first, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.Require().NoError(err)
	second, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.Require().NoError(err)

	first.Name = "First writer"
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, first, nil))
	s.Equal(int64(2), first.Version)

	second.Name = "Second writer"
	p := s.player("p1")
	p.Rating = 9999
	err = s.Storage.SaveTournament(s.Ctx, second, []*model.Player{p})
	s.ErrorIs(err, model.ErrConcurrentModification)
	s.Equal(int64(1), second.Version)

	got, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal("First writer", got.Name)
	_, err = s.Storage.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSaveNewTournamentTwiceConflicts() {
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, s.tournament("t1", baseTime), nil))

	err := s.Storage.SaveTournament(s.Ctx, s.tournament("t1", baseTime), nil)

	s.ErrorIs(err, model.ErrConcurrentModification)
}

func (s *Suite) TestSavedTournamentIsIsolatedFromCaller() {
	t := s.tournament("t1", baseTime)
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, t, nil))

	t.Matches[0].Player1Score = 7
	t.Players[0] = "changed"

	got, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal(0, got.Matches[0].Player1Score)
	s.Equal(model.PlayerID("p1"), got.Players[0])
}

func (s *Suite) TestListTournamentsNewestFirst() {
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, s.tournament("old", baseTime), nil))
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, s.tournament("new", baseTime.Add(time.Hour)), nil))

	got, err := s.Storage.ListTournaments(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(model.TournamentID("new"), got[0].ID)
	s.Equal(model.TournamentID("old"), got[1].ID)
	s.Equal(2, got[0].PlayerCount)
	s.Equal(model.FormatSwiss, got[0].Format)
}

func (s *Suite) TestDeleteTournament() {
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, s.tournament("t1", baseTime), nil))

	s.Require().NoError(s.Storage.DeleteTournament(s.Ctx, "t1"))

	_, err := s.Storage.GetTournament(s.Ctx, "t1")
	s.ErrorIs(err, model.ErrTournamentNotFound)
	_, err = s.Storage.GetMatch(s.Ctx, "t1-m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
	list, err := s.Storage.ListTournaments(s.Ctx)
	s.Require().NoError(err)
	s.Empty(list)

	s.ErrorIs(s.Storage.DeleteTournament(s.Ctx, "t1"), model.ErrTournamentNotFound)
}

// Match tests

func (s *Suite) TestGetMatchThroughIndex() {
	t := s.tournament("t1", baseTime)
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, t, nil))

	got, err := s.Storage.GetMatch(s.Ctx, "t1-m1")
	s.Require().NoError(err)
	s.Equal(model.TournamentID("t1"), got.TournamentID)
	s.Equal(model.PlayerID("p2"), got.Player2)

	// Matches appended later are indexed on the next save
	t.Matches = append(t.Matches, &model.Match{ID: "t1-m2", TournamentID: "t1", Seq: 2, Player1: "p2"})
	s.Require().NoError(s.Storage.SaveTournament(s.Ctx, t, nil))
	got, err = s.Storage.GetMatch(s.Ctx, "t1-m2")
	s.Require().NoError(err)
	s.Equal(2, got.Seq)
}

func (s *Suite) TestGetMatchNotFound() {
	_, err := s.Storage.GetMatch(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// Rating history tests

func (s *Suite) TestRatingHistoryAppendsInOrder() {
	changes := []model.RatingChange{
		{PlayerID: "p1", MatchID: "m1", OldRating: 1200, NewRating: 1216, Reason: "Match against B", RecordedAt: baseTime},
		{PlayerID: "p2", MatchID: "m1", OldRating: 1200, NewRating: 1184, Reason: "Match against A", RecordedAt: baseTime},
	}
	s.Require().NoError(s.Storage.AppendRatingChanges(s.Ctx, changes))
	s.Require().NoError(s.Storage.AppendRatingChanges(s.Ctx, []model.RatingChange{
		{PlayerID: "p1", MatchID: "m2", OldRating: 1216, NewRating: 1230, Reason: "Match against C", RecordedAt: baseTime.Add(time.Minute)},
	}))

	got, err := s.Storage.GetRatingHistory(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(changes[0], got[0])
	s.Equal(model.MatchID("m2"), got[1].MatchID)

	none, err := s.Storage.GetRatingHistory(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}
