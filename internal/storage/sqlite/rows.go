package sqlite

import (
	"time"

	"github.com/mcoot/tourney/internal/model"
)

// Timestamps are stored as Unix nanoseconds in UTC

type playerRow struct {
	ID        string  `db:"id"`
	Name      string  `db:"name"`
	Rating    float64 `db:"rating"`
	Wins      int     `db:"wins"`
	Losses    int     `db:"losses"`
	Draws     int     `db:"draws"`
	Points    float64 `db:"points"`
	Bracket   string  `db:"bracket"`
	Status    string  `db:"status"`
	CreatedAt int64   `db:"created_at"`
	UpdatedAt int64   `db:"updated_at"`
}

func toPlayerRow(p *model.Player) playerRow {
	return playerRow{
		ID:        string(p.ID),
		Name:      p.Name,
		Rating:    p.Rating,
		Wins:      p.Wins,
		Losses:    p.Losses,
		Draws:     p.Draws,
		Points:    p.Points,
		Bracket:   string(p.Bracket),
		Status:    string(p.Status),
		CreatedAt: toUnix(p.CreatedAt),
		UpdatedAt: toUnix(p.UpdatedAt),
	}
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{
		ID:        model.PlayerID(r.ID),
		Name:      r.Name,
		Rating:    r.Rating,
		Wins:      r.Wins,
		Losses:    r.Losses,
		Draws:     r.Draws,
		Points:    r.Points,
		Bracket:   model.BracketSide(r.Bracket),
		Status:    model.PlayerStatus(r.Status),
		CreatedAt: fromUnix(r.CreatedAt),
		UpdatedAt: fromUnix(r.UpdatedAt),
	}
}

type tournamentRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Format    string `db:"format"`
	Status    string `db:"status"`
	Version   int64  `db:"version"`
	CreatedAt int64  `db:"created_at"`
	Data      string `db:"data"`
}

type ratingChangeRow struct {
	PlayerID   string  `db:"player_id"`
	MatchID    string  `db:"match_id"`
	OldRating  float64 `db:"old_rating"`
	NewRating  float64 `db:"new_rating"`
	Reason     string  `db:"reason"`
	RecordedAt int64   `db:"recorded_at"`
}

func toRatingChangeRow(c model.RatingChange) ratingChangeRow {
	return ratingChangeRow{
		PlayerID:   string(c.PlayerID),
		MatchID:    string(c.MatchID),
		OldRating:  c.OldRating,
		NewRating:  c.NewRating,
		Reason:     c.Reason,
		RecordedAt: toUnix(c.RecordedAt),
	}
}

func (r ratingChangeRow) toModel() model.RatingChange {
	return model.RatingChange{
		PlayerID:   model.PlayerID(r.PlayerID),
		MatchID:    model.MatchID(r.MatchID),
		OldRating:  r.OldRating,
		NewRating:  r.NewRating,
		Reason:     r.Reason,
		RecordedAt: fromUnix(r.RecordedAt),
	}
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
