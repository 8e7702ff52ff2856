package model

import (
	"slices"
	"time"
)

// MatchID uniquely identifies a match
type MatchID string

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED" // Created by an engine, not yet in play
	MatchStatusWaiting   MatchStatus = "WAITING"   // Waiting on participants
	MatchStatusPending   MatchStatus = "PENDING"   // In play, awaiting a result
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
	MatchStatusBye       MatchStatus = "BYE" // Auto-awarded, no opponent
)

// BracketType tags which part of a tournament a match belongs to
type BracketType string

const (
	BracketUpper      BracketType = "UPPER"
	BracketLower      BracketType = "LOWER"
	BracketFinal      BracketType = "FINAL"
	BracketGrandFinal BracketType = "GRAND_FINAL"
	BracketSwiss      BracketType = "SWISS"
)

// IsDecider reports whether the bracket is one that must produce a unique winner
func (b BracketType) IsDecider() bool {
	return b == BracketFinal || b == BracketGrandFinal
}

// Match is a single pairing inside a tournament
type Match struct {
	ID           MatchID
	TournamentID TournamentID
	Seq          int // Creation order within the tournament, starting at 1
	Round        int
	Bracket      BracketType
	Status       MatchStatus

	Player1 PlayerID
	Player2 PlayerID // Empty for a bye

	Player1Score int
	Player2Score int

	MatchDate time.Time

	// Double-elimination dependency edges
	WinnerNextMatchID MatchID
	LoserNextMatchID  MatchID
	PreviousMatchIDs  []MatchID
}

// IsBye returns true if the match has no second participant
func (m *Match) IsBye() bool {
	return m.Player2 == ""
}

// IsResolved returns true once the match needs no further action
func (m *Match) IsResolved() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusBye
}

// IsDraw returns true if a completed match ended level
func (m *Match) IsDraw() bool {
	return m.Status == MatchStatusCompleted && !m.IsBye() && m.Player1Score == m.Player2Score
}

// Winner returns the winning player, or empty if there is none yet or the match was drawn
func (m *Match) Winner() PlayerID {
	switch {
	case m.Status == MatchStatusBye:
		return m.Player1
	case m.Status != MatchStatusCompleted:
		return ""
	case m.Player1Score > m.Player2Score:
		return m.Player1
	case m.Player2Score > m.Player1Score:
		return m.Player2
	default:
		return ""
	}
}

// Loser returns the losing player, or empty if there is no loser
func (m *Match) Loser() PlayerID {
	if m.Status != MatchStatusCompleted || m.IsBye() {
		return ""
	}
	switch {
	case m.Player1Score > m.Player2Score:
		return m.Player2
	case m.Player2Score > m.Player1Score:
		return m.Player1
	default:
		return ""
	}
}

// Opponent returns the other participant, or empty if the player is not in the match
func (m *Match) Opponent(id PlayerID) PlayerID {
	switch id {
	case m.Player1:
		return m.Player2
	case m.Player2:
		return m.Player1
	default:
		return ""
	}
}

// Involves returns true if the player is a participant
func (m *Match) Involves(id PlayerID) bool {
	return id != "" && (m.Player1 == id || m.Player2 == id)
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.PreviousMatchIDs = slices.Clone(m.PreviousMatchIDs)
	return &c
}
