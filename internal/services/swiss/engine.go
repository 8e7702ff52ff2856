package swiss

import (
	"log/slog"
	"math"

	"github.com/mcoot/tourney/internal/dependencies/random"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/format"
	"github.com/mcoot/tourney/internal/services/rating"
)

// Engine runs Swiss-system tournaments
type Engine struct {
	ratings *rating.Service
	random  random.Random
	logger  *slog.Logger
}

// Ensure Engine implements format.Engine
var _ format.Engine = (*Engine)(nil)

// New creates a new Swiss Engine
func New(ratings *rating.Service, random random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		ratings: ratings,
		random:  random,
		logger:  logger,
	}
}

// TotalRounds returns the number of Swiss rounds played for a roster size
func TotalRounds(players int) int {
	if players < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(players))))
}

// Initialize shuffles the roster and pairs adjacent players for round 1
func (e *Engine) Initialize(st *format.State) error {
	t := st.Tournament
	t.TotalSwissRounds = TotalRounds(len(t.Players))
	t.CurrentRound = 1
	t.RoundsCompleted = 0

	order := format.ShuffledCopy(e.random, t.Players)
	var pairs []pair
	for i := 0; i+1 < len(order); i += 2 {
		pairs = append(pairs, pair{first: order[i], second: order[i+1]})
	}
	if len(order)%2 == 1 {
		pairs = append(pairs, pair{first: order[len(order)-1]})
	}

	if err := e.schedule(st, pairs); err != nil {
		return err
	}

	e.logger.Info("swiss initialized",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("players", len(t.Players)),
		slog.Int("total_rounds", t.TotalSwissRounds),
	)
	return nil
}

// ReceiveMatchResult scores a completed match and advances the tournament.
// Once the final round is resolved the tournament completes, unless the top
// two cannot be separated, in which case a deciding GRAND_FINAL is scheduled.
func (e *Engine) ReceiveMatchResult(st *format.State, match *model.Match) error {
	t := st.Tournament

	if match.Bracket == model.BracketGrandFinal {
		if err := e.rate(st, match); err != nil {
			return err
		}
		st.Complete()
		e.logger.Info("swiss decider completed",
			slog.String("tournament_id", string(t.ID)),
			slog.String("winner", string(match.Winner())),
		)
		return nil
	}

	finished, err := e.RecordResult(st, match)
	if err != nil || !finished {
		return err
	}

	rows := Standings(st)
	if TiedAtTop(rows) {
		decider := st.AddMatch(t.TotalSwissRounds+1, model.BracketGrandFinal, rows[0].PlayerID, rows[1].PlayerID)
		e.logger.Info("swiss decider scheduled",
			slog.String("tournament_id", string(t.ID)),
			slog.String("match_id", string(decider.ID)),
		)
		return nil
	}

	st.Complete()
	e.logger.Info("swiss completed",
		slog.String("tournament_id", string(t.ID)),
		slog.String("winner", string(rows[0].PlayerID)),
	)
	return nil
}

// RecordResult awards points and ratings for a Swiss match and, if that
// resolves the current round, pairs the next one. It returns true when the
// final round has just been resolved.
func (e *Engine) RecordResult(st *format.State, match *model.Match) (bool, error) {
	t := st.Tournament
	if match.Bracket != model.BracketSwiss {
		return false, model.ErrUnexpectedBracket
	}

	p1, err := st.Player(match.Player1)
	if err != nil {
		return false, err
	}
	p2, err := st.Player(match.Player2)
	if err != nil {
		return false, err
	}
	switch match.Winner() {
	case p1.ID:
		p1.Points += PointsWin
	case p2.ID:
		p2.Points += PointsWin
	default:
		p1.Points += PointsDraw
		p2.Points += PointsDraw
	}
	st.Touch(p1, p2)
	st.RatingChanges = append(st.RatingChanges, e.ratings.UpdateRatings(p1, p2, match, true, st.Now)...)

	for _, m := range t.MatchesInRound(model.BracketSwiss, t.CurrentRound) {
		if !m.IsResolved() {
			return false, nil
		}
	}
	t.RoundsCompleted = t.CurrentRound

	if t.CurrentRound >= t.TotalSwissRounds {
		return true, nil
	}

	t.CurrentRound++
	ranked := make([]model.PlayerID, 0, len(t.Players))
	for _, row := range Standings(st) {
		ranked = append(ranked, row.PlayerID)
	}
	played, byes := buildHistory(t)
	if err := e.schedule(st, pairRound(ranked, played, byes)); err != nil {
		return false, err
	}

	e.logger.Info("swiss round paired",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("round", t.CurrentRound),
	)
	return false, nil
}

// DetermineWinner returns the decider's winner if one was played, otherwise
// the top of the final standings
func (e *Engine) DetermineWinner(st *format.State) (model.PlayerID, error) {
	t := st.Tournament
	if t.Status != model.TournamentStatusCompleted {
		return "", model.ErrTournamentNotCompleted
	}
	for _, m := range t.Matches {
		if m.Bracket == model.BracketGrandFinal && m.Status == model.MatchStatusCompleted {
			if w := m.Winner(); w != "" {
				return w, nil
			}
		}
	}
	rows := Standings(st)
	if len(rows) == 0 {
		return "", model.ErrNoWinner
	}
	return rows[0].PlayerID, nil
}

// schedule creates the matches for the current round. Byes credit their point
// immediately since they are resolved on creation.
func (e *Engine) schedule(st *format.State, pairs []pair) error {
	round := st.Tournament.CurrentRound
	for _, p := range pairs {
		m := st.AddMatch(round, model.BracketSwiss, p.first, p.second)
		if m.Status != model.MatchStatusBye {
			continue
		}
		player, err := st.Player(p.first)
		if err != nil {
			return err
		}
		player.Points += PointsBye
		st.Touch(player)
	}
	return nil
}

func (e *Engine) rate(st *format.State, match *model.Match) error {
	p1, err := st.Player(match.Player1)
	if err != nil {
		return err
	}
	p2, err := st.Player(match.Player2)
	if err != nil {
		return err
	}
	st.Touch(p1, p2)
	st.RatingChanges = append(st.RatingChanges, e.ratings.UpdateRatings(p1, p2, match, false, st.Now)...)
	return nil
}
