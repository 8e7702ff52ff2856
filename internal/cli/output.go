package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/tourney/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SimulationResult:
		o.printSimulation(v)
	case []*SimulationResult:
		for i, r := range v {
			if i > 0 {
				fmt.Fprintln(o.w)
			}
			o.printSimulation(*r)
		}
	case []model.RatingChange:
		o.printHistory(v)
	case []model.TournamentSummary:
		o.printSummaries(v)
	case []model.PlayerRanking:
		o.printRanking(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSimulation(r SimulationResult) {
	fmt.Fprintf(o.w, "Tournament: %s (%s)\n", r.Name, r.TournamentID)
	fmt.Fprintf(o.w, "Format: %s\n", r.Format)
	fmt.Fprintf(o.w, "Matches: %d\n", r.Matches)
	if r.Winner != nil {
		fmt.Fprintf(o.w, "Winner: %s (%.0f)\n", r.Winner.Name, r.Winner.Rating)
	}

	if len(r.Standings) > 0 {
		fmt.Fprintln(o.w, "\nStandings:")
		fmt.Fprintf(o.w, "  %-4s %-20s %6s %6s %6s %7s  %s\n", "#", "Player", "Pts", "Buch", "SB", "Rating", "W-D-L")
		for _, s := range r.Standings {
			fmt.Fprintf(o.w, "  %-4d %-20s %6.1f %6.1f %6.2f %7.0f  %d-%d-%d\n",
				s.Rank, s.Name, s.Points, s.Buchholz, s.SonnebornBerger, s.Rating, s.Wins, s.Draws, s.Losses)
		}
	}
}

func (o *Output) printHistory(changes []model.RatingChange) {
	if len(changes) == 0 {
		fmt.Fprintln(o.w, "No rating changes recorded")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(o.w, "%s  %7.1f -> %7.1f (%+.1f)  %s\n",
			c.RecordedAt.Format("2006-01-02 15:04:05"), c.OldRating, c.NewRating, c.Delta(), c.Reason)
	}
}

func (o *Output) printSummaries(summaries []model.TournamentSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(o.w, "No tournaments")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(o.w, "%s  %-20s %-18s %-9s %d players\n", s.ID, s.Name, s.Format, s.Status, s.PlayerCount)
	}
}

func (o *Output) printRanking(ranked []model.PlayerRanking) {
	if len(ranked) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	fmt.Fprintf(o.w, "%-4s %-20s %7s  %s\n", "#", "Player", "Rating", "W-D-L")
	for _, r := range ranked {
		fmt.Fprintf(o.w, "%-4d %-20s %7.0f  %d-%d-%d\n", r.Rank, r.Name, r.Rating, r.Wins, r.Draws, r.Losses)
	}
}
