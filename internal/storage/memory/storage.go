package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.Player
	tournaments map[model.TournamentID]*model.Tournament
	matchIndex  map[model.MatchID]model.TournamentID
	history     map[model.PlayerID][]model.RatingChange
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		tournaments: make(map[model.TournamentID]*model.Tournament),
		matchIndex:  make(map[model.MatchID]model.TournamentID),
		history:     make(map[model.PlayerID][]model.RatingChange),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, ok := s.players[id]
		if !ok {
			return nil, model.ErrPlayerNotFound
		}
		out = append(out, player.Clone())
	}
	return out, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Player, 0, len(s.players))
	for _, player := range s.players {
		out = append(out, player.Clone())
	}
	storage.SortPlayers(out)
	return out, nil
}

// Tournament operations

func (s *Storage) SaveTournament(ctx context.Context, t *model.Tournament, players []*model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored int64
	if existing, ok := s.tournaments[t.ID]; ok {
		stored = existing.Version
	}
	if stored != t.Version {
		return model.ErrConcurrentModification
	}

	t.Version++
	s.tournaments[t.ID] = t.Clone()
	for _, m := range t.Matches {
		s.matchIndex[m.ID] = t.ID
	}
	for _, p := range players {
		s.players[p.ID] = p.Clone()
	}
	return nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, model.ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (s *Storage) ListTournaments(ctx context.Context) ([]model.TournamentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TournamentSummary, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		out = append(out, t.Summary())
	}
	storage.SortSummaries(out)
	return out, nil
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return model.ErrTournamentNotFound
	}
	for _, m := range t.Matches {
		delete(s.matchIndex, m.ID)
	}
	delete(s.tournaments, id)
	return nil
}

// Match operations

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tournamentID, ok := s.matchIndex[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	m := s.tournaments[tournamentID].GetMatch(id)
	if m == nil {
		return nil, model.ErrMatchNotFound
	}
	return m.Clone(), nil
}

// Rating history operations

func (s *Storage) AppendRatingChanges(ctx context.Context, changes []model.RatingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		s.history[c.PlayerID] = append(s.history[c.PlayerID], c)
	}
	return nil
}

func (s *Storage) GetRatingHistory(ctx context.Context, playerID model.PlayerID) ([]model.RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history[playerID]), nil
}
