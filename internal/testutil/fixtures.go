package testutil

import (
	"fmt"
	"time"

	"github.com/mcoot/tourney/internal/dependencies/mocks"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/format"
)

// Players returns n players named P1..Pn at the default rating
func Players(n int, now time.Time) []*model.Player {
	out := make([]*model.Player, n)
	for i := range out {
		id := fmt.Sprintf("P%d", i+1)
		out[i] = &model.Player{
			ID:        model.PlayerID(id),
			Name:      id,
			Rating:    model.DefaultRating,
			Status:    model.PlayerStatusQualified,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return out
}

// NewState builds an ONGOING tournament of the given format over n fresh players
func NewState(f model.Format, n int, now time.Time) *format.State {
	players := Players(n, now)
	ids := make([]model.PlayerID, n)
	for i, p := range players {
		ids[i] = p.ID
	}
	t := &model.Tournament{
		ID:        "t1",
		Name:      "Test Open",
		Format:    f,
		Status:    model.TournamentStatusOngoing,
		Players:   ids,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return format.NewState(t, players, now, mocks.NewMockIDs())
}

// Complete records scores on a match the way the lifecycle controller does
func Complete(m *model.Match, p1Score, p2Score int) *model.Match {
	m.Player1Score = p1Score
	m.Player2Score = p2Score
	m.Status = model.MatchStatusCompleted
	return m
}

// OpenMatches returns the matches still awaiting a result
func OpenMatches(t *model.Tournament) []*model.Match {
	var out []*model.Match
	for _, m := range t.Matches {
		if !m.IsResolved() && m.Status != model.MatchStatusCancelled {
			out = append(out, m)
		}
	}
	return out
}

// FindMatch returns the unresolved match between the two players, or nil
func FindMatch(t *model.Tournament, a, b model.PlayerID) *model.Match {
	for _, m := range OpenMatches(t) {
		if m.Involves(a) && m.Involves(b) {
			return m
		}
	}
	return nil
}
