package swiss

import (
	"github.com/mcoot/tourney/internal/model"
)

// maxSearchSteps bounds the no-rematch search so very large rosters fall
// back to greedy pairing instead of exploring every arrangement
const maxSearchSteps = 200_000

// pair is one scheduled pairing. An empty second player is a bye.
type pair struct {
	first, second model.PlayerID
}

// history is the set of pairings already played in the tournament
type history map[model.PlayerID]map[model.PlayerID]bool

func (h history) played(a, b model.PlayerID) bool {
	return h[a][b]
}

func (h history) add(a, b model.PlayerID) {
	if h[a] == nil {
		h[a] = make(map[model.PlayerID]bool)
	}
	if h[b] == nil {
		h[b] = make(map[model.PlayerID]bool)
	}
	h[a][b] = true
	h[b][a] = true
}

// buildHistory collects every Swiss pairing and bye from the match list
func buildHistory(t *model.Tournament) (history, map[model.PlayerID]bool) {
	played := make(history)
	byes := make(map[model.PlayerID]bool)
	for _, m := range t.Matches {
		if m.Bracket != model.BracketSwiss {
			continue
		}
		if m.IsBye() {
			byes[m.Player1] = true
			continue
		}
		played.add(m.Player1, m.Player2)
	}
	return played, byes
}

// pairRound pairs players given in ranking order, best first.
//
// With an odd count the bye goes to the lowest-ranked player who has not had
// one yet. A complete pairing without rematches is searched for first; if
// none exists, players are paired greedily with the highest-ranked opponent
// they have not met, and anyone left without a legal opponent gets a bye.
func pairRound(ranked []model.PlayerID, played history, byes map[model.PlayerID]bool) []pair {
	if len(ranked)%2 == 0 {
		if pairs, ok := searchPairing(ranked, played); ok {
			return pairs
		}
		return greedyPairing(ranked, played, byes)
	}

	for _, candidate := range byeCandidates(ranked, byes) {
		rest := make([]model.PlayerID, 0, len(ranked)-1)
		for _, id := range ranked {
			if id != candidate {
				rest = append(rest, id)
			}
		}
		if pairs, ok := searchPairing(rest, played); ok {
			return append(pairs, pair{first: candidate})
		}
	}
	return greedyPairing(ranked, played, byes)
}

// byeCandidates lists bye recipients in preference order: players without a
// previous bye from the bottom of the table up, then everyone else
func byeCandidates(ranked []model.PlayerID, byes map[model.PlayerID]bool) []model.PlayerID {
	var fresh, repeat []model.PlayerID
	for i := len(ranked) - 1; i >= 0; i-- {
		if byes[ranked[i]] {
			repeat = append(repeat, ranked[i])
		} else {
			fresh = append(fresh, ranked[i])
		}
	}
	return append(fresh, repeat...)
}

// searchPairing looks depth-first for a pairing of an even-sized list with no
// rematches, preferring partners close in the ranking
func searchPairing(ranked []model.PlayerID, played history) ([]pair, bool) {
	used := make([]bool, len(ranked))
	pairs := make([]pair, 0, len(ranked)/2)
	steps := 0

	var solve func() bool
	solve = func() bool {
		first := -1
		for i := range ranked {
			if !used[i] {
				first = i
				break
			}
		}
		if first < 0 {
			return true
		}
		used[first] = true
		for j := first + 1; j < len(ranked); j++ {
			if used[j] || played.played(ranked[first], ranked[j]) {
				continue
			}
			steps++
			if steps > maxSearchSteps {
				break
			}
			used[j] = true
			pairs = append(pairs, pair{first: ranked[first], second: ranked[j]})
			if solve() {
				return true
			}
			pairs = pairs[:len(pairs)-1]
			used[j] = false
		}
		used[first] = false
		return false
	}

	if !solve() {
		return nil, false
	}
	return pairs, true
}

// greedyPairing pairs each unpaired player with the highest-ranked unpaired
// player they have not met. Players with no such opponent receive a bye. With
// an odd count the preferred bye candidate is set aside before pairing.
func greedyPairing(ranked []model.PlayerID, played history, byes map[model.PlayerID]bool) []pair {
	var reserved model.PlayerID
	if len(ranked)%2 != 0 {
		reserved = byeCandidates(ranked, byes)[0]
		rest := make([]model.PlayerID, 0, len(ranked)-1)
		for _, id := range ranked {
			if id != reserved {
				rest = append(rest, id)
			}
		}
		ranked = rest
	}

	used := make([]bool, len(ranked))
	var pairs []pair
	for i := range ranked {
		if used[i] {
			continue
		}
		used[i] = true
		partner := -1
		for j := i + 1; j < len(ranked); j++ {
			if !used[j] && !played.played(ranked[i], ranked[j]) {
				partner = j
				break
			}
		}
		if partner < 0 {
			pairs = append(pairs, pair{first: ranked[i]})
			continue
		}
		used[partner] = true
		pairs = append(pairs, pair{first: ranked[i], second: ranked[partner]})
	}
	if reserved != "" {
		pairs = append(pairs, pair{first: reserved})
	}
	return pairs
}
