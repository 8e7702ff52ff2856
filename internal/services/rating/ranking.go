package rating

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mcoot/tourney/internal/model"
)

// Rank orders players for the global leaderboard: rating, then wins, then
// losses, all descending, with the player ID breaking any remaining tie.
// Ranks are 1-based.
func Rank(players []*model.Player) []model.PlayerRanking {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b *model.Player) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Losses, a.Losses); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})

	out := make([]model.PlayerRanking, len(sorted))
	for i, p := range sorted {
		out[i] = model.PlayerRanking{
			Rank:     i + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			Rating:   p.Rating,
			Wins:     p.Wins,
			Draws:    p.Draws,
			Losses:   p.Losses,
		}
	}
	return out
}
