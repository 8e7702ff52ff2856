package model

import "time"

// RatingChange is an append-only audit record of one rating update
type RatingChange struct {
	PlayerID   PlayerID
	MatchID    MatchID
	OldRating  float64
	NewRating  float64
	Reason     string
	RecordedAt time.Time
}

// Delta returns the signed rating movement
func (r RatingChange) Delta() float64 {
	return r.NewRating - r.OldRating
}
