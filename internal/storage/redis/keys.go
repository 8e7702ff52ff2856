package redis

import (
	"fmt"

	"github.com/mcoot/tourney/internal/model"
)

// keys builds the Redis key for each entity type under a common prefix
type keys struct {
	prefix string
}

// player returns the key for a Player
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// playerIndex returns the key for the SET of all player IDs
func (k keys) playerIndex() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// tournament returns the key for a Tournament aggregate
func (k keys) tournament(id model.TournamentID) string {
	return fmt.Sprintf("%s:tournament:%s", k.prefix, id)
}

// tournamentIndex returns the key for the SET of all tournament IDs
func (k keys) tournamentIndex() string {
	return fmt.Sprintf("%s:idx:tournaments", k.prefix)
}

// matchIndex returns the key for the HASH of match ID -> tournament ID
func (k keys) matchIndex() string {
	return fmt.Sprintf("%s:idx:matches", k.prefix)
}

// history returns the key for the LIST of a player's rating changes
func (k keys) history(id model.PlayerID) string {
	return fmt.Sprintf("%s:history:%s", k.prefix, id)
}
