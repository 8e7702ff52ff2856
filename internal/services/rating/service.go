package rating

import (
	"fmt"
	"math"
	"time"

	"github.com/mcoot/tourney/internal/model"
)

// KFactor is the fixed maximum rating movement per match
const KFactor = 32.0

// Score values for a single match outcome
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// Service applies Elo updates to match participants
type Service struct{}

// New creates a new rating Service
func New() *Service {
	return &Service{}
}

// ExpectedScore returns the probability that a player rated a beats a player rated b
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// UpdateRatings adjusts both players' ratings in place from a completed match
// and returns the audit records stamped with now. Nothing changes when the
// match has no winner, unless it is a draw and drawAllowed is set.
func (s *Service) UpdateRatings(a, b *model.Player, match *model.Match, drawAllowed bool, now time.Time) []model.RatingChange {
	if a == nil || b == nil || match.Status != model.MatchStatusCompleted || match.IsBye() {
		return nil
	}

	var actualA float64
	switch winner := match.Winner(); {
	case winner == a.ID:
		actualA = ScoreWin
	case winner == b.ID:
		actualA = ScoreLoss
	case match.IsDraw() && drawAllowed:
		actualA = ScoreDraw
	default:
		return nil
	}

	oldA, oldB := a.Rating, b.Rating
	expectedA := ExpectedScore(oldA, oldB)
	expectedB := ExpectedScore(oldB, oldA)

	a.Rating = oldA + KFactor*(actualA-expectedA)
	b.Rating = oldB + KFactor*((1-actualA)-expectedB)

	a.UpdatedAt = now
	b.UpdatedAt = now

	return []model.RatingChange{
		{
			PlayerID:   a.ID,
			MatchID:    match.ID,
			OldRating:  oldA,
			NewRating:  a.Rating,
			Reason:     fmt.Sprintf("Match against %s", displayName(b)),
			RecordedAt: now,
		},
		{
			PlayerID:   b.ID,
			MatchID:    match.ID,
			OldRating:  oldB,
			NewRating:  b.Rating,
			Reason:     fmt.Sprintf("Match against %s", displayName(a)),
			RecordedAt: now,
		},
	}
}

func displayName(p *model.Player) string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}
