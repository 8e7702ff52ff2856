package model

import (
	"slices"
	"time"
)

// TournamentID uniquely identifies a tournament
type TournamentID string

// Format is the closed set of supported tournament formats
type Format string

const (
	FormatSwiss             Format = "SWISS"
	FormatDoubleElimination Format = "DOUBLE_ELIMINATION"
	FormatHybrid            Format = "HYBRID"
)

// AllowsDraws reports whether regular matches of the format may end level
func (f Format) AllowsDraws() bool {
	return f != FormatDoubleElimination
}

// Valid reports whether f is a supported format
func (f Format) Valid() bool {
	switch f {
	case FormatSwiss, FormatDoubleElimination, FormatHybrid:
		return true
	}
	return false
}

// TournamentStatus is the one-directional lifecycle of a tournament
type TournamentStatus string

const (
	TournamentStatusScheduled TournamentStatus = "SCHEDULED"
	TournamentStatusOngoing   TournamentStatus = "ONGOING"
	TournamentStatusCompleted TournamentStatus = "COMPLETED"
)

// RatingBand restricts which players may be assigned. A zero bound is open.
type RatingBand struct {
	Min float64
	Max float64
}

// Contains reports whether the rating falls inside the band
func (b RatingBand) Contains(rating float64) bool {
	if b.Min > 0 && rating < b.Min {
		return false
	}
	if b.Max > 0 && rating > b.Max {
		return false
	}
	return true
}

// Valid reports whether the band bounds are consistent
func (b RatingBand) Valid() bool {
	return b.Min >= 0 && b.Max >= 0 && (b.Max == 0 || b.Min <= b.Max)
}

// Tournament is the aggregate root. It exclusively owns its matches and
// bracket lists; players are referenced by ID.
type Tournament struct {
	ID     TournamentID
	Name   string
	Format Format
	Status TournamentStatus
	Band   RatingBand

	Players []PlayerID
	Matches []*Match // Append-only, ordered by Seq

	// Double-elimination bracket membership
	WinnersBracket []PlayerID
	LosersBracket  []PlayerID

	// Swiss counters
	CurrentRound     int
	TotalSwissRounds int
	RoundsCompleted  int

	// Set once the hybrid elimination phase has been seeded
	EliminationStarted bool

	NextMatchSeq int

	// Version is bumped on every successful save and checked by storage
	Version int64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}

// GetMatch returns the match with the given ID, or nil
func (t *Tournament) GetMatch(id MatchID) *Match {
	for _, m := range t.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// HasPlayer returns true if the player is on the roster
func (t *Tournament) HasPlayer(id PlayerID) bool {
	for _, p := range t.Players {
		if p == id {
			return true
		}
	}
	return false
}

// MatchesInRound returns matches with the given bracket and round
func (t *Tournament) MatchesInRound(bracket BracketType, round int) []*Match {
	var out []*Match
	for _, m := range t.Matches {
		if m.Bracket == bracket && m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

// AllMatchesResolved returns true if every match is COMPLETED or BYE
func (t *Tournament) AllMatchesResolved() bool {
	for _, m := range t.Matches {
		if !m.IsResolved() {
			return false
		}
	}
	return true
}

// LastMatch returns the match with the highest sequence number, or nil
func (t *Tournament) LastMatch() *Match {
	var last *Match
	for _, m := range t.Matches {
		if last == nil || m.Seq > last.Seq {
			last = m
		}
	}
	return last
}

// Clone returns a deep copy of the tournament
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = slices.Clone(t.Players)
	c.WinnersBracket = slices.Clone(t.WinnersBracket)
	c.LosersBracket = slices.Clone(t.LosersBracket)
	if t.Matches != nil {
		c.Matches = make([]*Match, len(t.Matches))
		for i, m := range t.Matches {
			c.Matches[i] = m.Clone()
		}
	}
	return &c
}

// TournamentSummary is a lightweight listing entry
type TournamentSummary struct {
	ID          TournamentID
	Name        string
	Format      Format
	Status      TournamentStatus
	PlayerCount int
	CreatedAt   time.Time
}

// Summary returns the listing entry for the tournament
func (t *Tournament) Summary() TournamentSummary {
	return TournamentSummary{
		ID:          t.ID,
		Name:        t.Name,
		Format:      t.Format,
		Status:      t.Status,
		PlayerCount: len(t.Players),
		CreatedAt:   t.CreatedAt,
	}
}
