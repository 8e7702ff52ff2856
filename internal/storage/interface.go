package storage

import (
	"context"

	"github.com/mcoot/tourney/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// GetPlayers returns the players in the order requested, failing with
	// ErrPlayerNotFound if any ID is unknown
	GetPlayers(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Tournament operations
	//
	// SaveTournament writes the tournament aggregate together with the given
	// players in one commit. The write only succeeds if the stored version
	// still equals t.Version (zero for a tournament that has never been
	// saved); otherwise ErrConcurrentModification is returned and nothing is
	// written. On success t.Version is incremented.
	SaveTournament(ctx context.Context, t *model.Tournament, players []*model.Player) error
	GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error)
	ListTournaments(ctx context.Context) ([]model.TournamentSummary, error)
	DeleteTournament(ctx context.Context, id model.TournamentID) error

	// Match operations
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)

	// Rating history operations
	AppendRatingChanges(ctx context.Context, changes []model.RatingChange) error
	GetRatingHistory(ctx context.Context, playerID model.PlayerID) ([]model.RatingChange, error)
}
