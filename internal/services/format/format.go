// Package format defines the contract shared by the tournament format engines
// and the per-operation state they mutate.
package format

import (
	"slices"
	"time"

	"github.com/mcoot/tourney/internal/dependencies/ids"
	"github.com/mcoot/tourney/internal/model"
)

// Engine drives one tournament format. Engines only mutate the State they are
// handed; persisting it is the caller's responsibility.
type Engine interface {
	// Initialize schedules the opening matches of a freshly started tournament
	Initialize(st *State) error

	// ReceiveMatchResult consumes a match that has just been marked COMPLETED
	ReceiveMatchResult(st *State, match *model.Match) error

	// DetermineWinner returns the winner of a COMPLETED tournament
	DetermineWinner(st *State) (model.PlayerID, error)
}

// State is a working copy of one tournament and its roster for the
// duration of a single operation
type State struct {
	Tournament *model.Tournament
	Players    map[model.PlayerID]*model.Player

	// RatingChanges collects the audit records emitted during the operation
	RatingChanges []model.RatingChange

	Now time.Time

	ids     ids.Generator
	touched map[model.PlayerID]struct{}
}

// NewState creates a State over the given tournament and players
func NewState(t *model.Tournament, players []*model.Player, now time.Time, gen ids.Generator) *State {
	byID := make(map[model.PlayerID]*model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return &State{
		Tournament: t,
		Players:    byID,
		Now:        now,
		ids:        gen,
		touched:    make(map[model.PlayerID]struct{}),
	}
}

// Player returns a roster player, failing if the ID is not loaded
func (s *State) Player(id model.PlayerID) (*model.Player, error) {
	p, ok := s.Players[id]
	if !ok {
		return nil, model.ErrUnknownParticipant
	}
	return p, nil
}

// RosterPlayers returns the loaded players in roster order
func (s *State) RosterPlayers() []*model.Player {
	out := make([]*model.Player, 0, len(s.Tournament.Players))
	for _, id := range s.Tournament.Players {
		if p, ok := s.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Touch stamps players as modified by this operation. Only touched players
// are written back when the operation commits.
func (s *State) Touch(players ...*model.Player) {
	for _, p := range players {
		p.UpdatedAt = s.Now
		s.touched[p.ID] = struct{}{}
	}
}

// TouchedPlayers returns the players modified by this operation in roster order
func (s *State) TouchedPlayers() []*model.Player {
	out := make([]*model.Player, 0, len(s.touched))
	for _, id := range s.Tournament.Players {
		if _, ok := s.touched[id]; !ok {
			continue
		}
		if p, ok := s.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// AddMatch appends a new match to the tournament. An empty player2 makes the
// match a bye, which is resolved on creation.
func (s *State) AddMatch(round int, bracket model.BracketType, player1, player2 model.PlayerID) *model.Match {
	t := s.Tournament
	t.NextMatchSeq++

	status := model.MatchStatusScheduled
	if player2 == "" {
		status = model.MatchStatusBye
	}

	m := &model.Match{
		ID:           model.MatchID(s.ids.NewID()),
		TournamentID: t.ID,
		Seq:          t.NextMatchSeq,
		Round:        round,
		Bracket:      bracket,
		Status:       status,
		Player1:      player1,
		Player2:      player2,
		MatchDate:    s.Now,
	}
	t.Matches = append(t.Matches, m)
	return m
}

// Complete marks the tournament finished
func (s *State) Complete() {
	s.Tournament.Status = model.TournamentStatusCompleted
	s.Tournament.CompletedAt = s.Now
}

// Shuffler is the subset of random.Random the engines need
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// ShuffledCopy returns the IDs in a random order, leaving the input untouched
func ShuffledCopy(r Shuffler, players []model.PlayerID) []model.PlayerID {
	out := slices.Clone(players)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
