package swiss

import (
	"cmp"
	"slices"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/format"
)

// Points awarded per Swiss outcome
const (
	PointsWin  = 1.0
	PointsDraw = 0.5
	PointsLoss = 0.0
	PointsBye  = 1.0
)

// record accumulates one player's Swiss results from the match list
type record struct {
	points   float64
	wins     int
	draws    int
	losses   int
	byes     int
	opponent []model.PlayerID
	defeated []model.PlayerID
	drawn    []model.PlayerID
}

// tally builds per-player records from the resolved Swiss matches.
// Deciders are excluded; they never award points.
func tally(t *model.Tournament) map[model.PlayerID]*record {
	recs := make(map[model.PlayerID]*record, len(t.Players))
	for _, id := range t.Players {
		recs[id] = &record{}
	}
	get := func(id model.PlayerID) *record {
		r, ok := recs[id]
		if !ok {
			r = &record{}
			recs[id] = r
		}
		return r
	}

	for _, m := range t.Matches {
		if m.Bracket != model.BracketSwiss || !m.IsResolved() {
			continue
		}
		if m.Status == model.MatchStatusBye {
			r := get(m.Player1)
			r.points += PointsBye
			r.byes++
			continue
		}
		r1, r2 := get(m.Player1), get(m.Player2)
		r1.opponent = append(r1.opponent, m.Player2)
		r2.opponent = append(r2.opponent, m.Player1)
		switch m.Winner() {
		case m.Player1:
			r1.points += PointsWin
			r1.wins++
			r1.defeated = append(r1.defeated, m.Player2)
			r2.losses++
		case m.Player2:
			r2.points += PointsWin
			r2.wins++
			r2.defeated = append(r2.defeated, m.Player1)
			r1.losses++
		default:
			r1.points += PointsDraw
			r2.points += PointsDraw
			r1.draws++
			r2.draws++
			r1.drawn = append(r1.drawn, m.Player2)
			r2.drawn = append(r2.drawn, m.Player1)
		}
	}
	return recs
}

// Standings ranks the roster by points, then Buchholz, then Sonneborn-Berger.
// Opponent scores are evaluated at call time, so tie-breaks follow later
// results. Rows still level after every metric are ordered by rating, then ID.
func Standings(st *format.State) []model.Standing {
	t := st.Tournament
	recs := tally(t)

	sumPoints := func(ids []model.PlayerID, weight float64) float64 {
		total := 0.0
		for _, id := range ids {
			if r, ok := recs[id]; ok {
				total += weight * r.points
			}
		}
		return total
	}

	rows := make([]model.Standing, 0, len(t.Players))
	for _, id := range t.Players {
		r := recs[id]
		row := model.Standing{
			PlayerID:        id,
			Points:          r.points,
			Buchholz:        sumPoints(r.opponent, 1),
			SonnebornBerger: sumPoints(r.defeated, 1) + sumPoints(r.drawn, 0.5),
			Wins:            r.wins,
			Draws:           r.draws,
			Losses:          r.losses,
			Byes:            r.byes,
		}
		if p, ok := st.Players[id]; ok {
			row.Name = p.Name
			row.Rating = p.Rating
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b model.Standing) int {
		if c := compareScores(a, b); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// compareScores orders two rows by the tie-break cascade, best first
func compareScores(a, b model.Standing) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Buchholz, a.Buchholz); c != 0 {
		return c
	}
	return cmp.Compare(b.SonnebornBerger, a.SonnebornBerger)
}

// TiedAtTop reports whether the top two rows cannot be separated by score,
// Buchholz or Sonneborn-Berger
func TiedAtTop(rows []model.Standing) bool {
	return len(rows) >= 2 && compareScores(rows[0], rows[1]) == 0
}
