package storage

import (
	"slices"
	"strings"

	"github.com/mcoot/tourney/internal/model"
)

// SortSummaries orders tournament listings newest first, then by ID, so every
// backend lists tournaments identically
func SortSummaries(summaries []model.TournamentSummary) {
	slices.SortFunc(summaries, func(a, b model.TournamentSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
}

// SortPlayers orders players by ID
func SortPlayers(players []*model.Player) {
	slices.SortFunc(players, func(a, b *model.Player) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
}
