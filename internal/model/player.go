package model

import "time"

// DefaultRating is the rating every newly registered player starts with
const DefaultRating = 1200.0

// PlayerID uniquely identifies a player across the system
type PlayerID string

// BracketSide records which double-elimination bracket a player is in
type BracketSide string

const (
	BracketSideNone  BracketSide = ""
	BracketSideUpper BracketSide = "UPPER"
	BracketSideLower BracketSide = "LOWER"
)

// PlayerStatus is a player's standing in the tournament they are playing
type PlayerStatus string

const (
	PlayerStatusQualified  PlayerStatus = "QUALIFIED"
	PlayerStatusEliminated PlayerStatus = "ELIMINATED"
)

// Player is a rated competitor. Players are shared between tournaments,
// so their rating and record persist after a tournament completes.
type Player struct {
	ID     PlayerID
	Name   string
	Rating float64

	// Cumulative record
	Wins   int
	Losses int
	Draws  int
	Points float64 // Swiss points in the player's current tournament

	Bracket BracketSide
	Status  PlayerStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ResetForTournament clears the per-tournament fields before a tournament starts
func (p *Player) ResetForTournament() {
	p.Points = 0
	p.Bracket = BracketSideNone
	p.Status = PlayerStatusQualified
}
