package elimination

import (
	"log/slog"
	"slices"

	"github.com/mcoot/tourney/internal/dependencies/random"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/format"
	"github.com/mcoot/tourney/internal/services/rating"
)

// Engine runs double-elimination brackets. Rounds are paired live from the
// current bracket lists rather than from a precomputed bracket graph.
type Engine struct {
	ratings *rating.Service
	random  random.Random
	logger  *slog.Logger
}

// Ensure Engine implements format.Engine
var _ format.Engine = (*Engine)(nil)

// New creates a new double-elimination Engine
func New(ratings *rating.Service, random random.Random, logger *slog.Logger) *Engine {
	return &Engine{
		ratings: ratings,
		random:  random,
		logger:  logger,
	}
}

// Initialize seeds the whole roster into the winners bracket
func (e *Engine) Initialize(st *format.State) error {
	return e.InitializeWith(st, st.Tournament.Players)
}

// InitializeWith seeds the given entrants into the winners bracket, shuffles
// them and pairs adjacent entrants into the first UPPER round
func (e *Engine) InitializeWith(st *format.State, entrants []model.PlayerID) error {
	t := st.Tournament
	if len(entrants) < 2 || len(entrants)%2 != 0 {
		return model.ErrBracketStalled
	}

	t.WinnersBracket = format.ShuffledCopy(e.random, entrants)
	t.LosersBracket = nil
	for _, id := range t.WinnersBracket {
		p, err := st.Player(id)
		if err != nil {
			return err
		}
		p.Bracket = model.BracketSideUpper
		p.Status = model.PlayerStatusQualified
		st.Touch(p)
	}

	round := nextRound(t)
	for i := 0; i+1 < len(t.WinnersBracket); i += 2 {
		st.AddMatch(round, model.BracketUpper, t.WinnersBracket[i], t.WinnersBracket[i+1])
	}

	e.logger.Info("elimination bracket initialized",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("entrants", len(entrants)),
	)
	return nil
}

// ReceiveMatchResult routes the loser of a completed match, updates ratings
// and, once no match is outstanding, schedules the next wave of matches
func (e *Engine) ReceiveMatchResult(st *format.State, match *model.Match) error {
	t := st.Tournament
	winnerID, loserID := match.Winner(), match.Loser()
	if winnerID == "" || loserID == "" {
		return model.ErrNoWinner
	}
	winner, err := st.Player(winnerID)
	if err != nil {
		return err
	}
	loser, err := st.Player(loserID)
	if err != nil {
		return err
	}

	decided := false
	switch match.Bracket {
	case model.BracketUpper:
		e.dropToLosers(st, loser)
	case model.BracketLower:
		e.eliminate(st, loser)
	case model.BracketFinal:
		if slices.Contains(t.LosersBracket, loserID) {
			decided = true
		} else {
			// The winners-bracket finalist's first loss forces a grand final
			e.dropToLosers(st, loser)
		}
	case model.BracketGrandFinal:
		decided = true
	default:
		return model.ErrUnexpectedBracket
	}

	st.Touch(winner, loser)
	st.RatingChanges = append(st.RatingChanges, e.ratings.UpdateRatings(winner, loser, match, false, st.Now)...)

	if decided {
		t.WinnersBracket = nil
		t.LosersBracket = nil
		winner.Bracket = model.BracketSideNone
		loser.Bracket = model.BracketSideNone
		loser.Status = model.PlayerStatusEliminated
		st.Complete()
		e.logger.Info("elimination completed",
			slog.String("tournament_id", string(t.ID)),
			slog.String("winner", string(winnerID)),
		)
		return nil
	}

	if !t.AllMatchesResolved() {
		return nil
	}
	return e.scheduleNext(st)
}

// DetermineWinner returns the winner of the last match played
func (e *Engine) DetermineWinner(st *format.State) (model.PlayerID, error) {
	t := st.Tournament
	if t.Status != model.TournamentStatusCompleted {
		return "", model.ErrTournamentNotCompleted
	}
	last := t.LastMatch()
	if last == nil || last.Status != model.MatchStatusCompleted {
		return "", model.ErrNoWinner
	}
	winner := last.Winner()
	if winner == "" {
		return "", model.ErrNoWinner
	}
	return winner, nil
}

// scheduleNext pairs the next wave once every outstanding match is resolved
func (e *Engine) scheduleNext(st *format.State) error {
	t := st.Tournament
	w, l := t.WinnersBracket, t.LosersBracket
	round := nextRound(t)

	var created []*model.Match
	switch {
	case len(w)+len(l) == 2 && len(w) == 1:
		created = append(created, st.AddMatch(round, model.BracketFinal, w[0], l[0]))
	case len(w)+len(l) == 2 && len(l) == 2:
		created = append(created, st.AddMatch(round, model.BracketGrandFinal, l[0], l[1]))
	default:
		for i := 0; i+1 < len(w); i += 2 {
			created = append(created, st.AddMatch(round, model.BracketUpper, w[i], w[i+1]))
		}
		for i := 0; i+1 < len(l); i += 2 {
			created = append(created, st.AddMatch(round, model.BracketLower, l[i], l[i+1]))
		}
	}

	if len(created) == 0 {
		e.logger.Error("elimination bracket stalled",
			slog.String("tournament_id", string(t.ID)),
			slog.Int("winners", len(w)),
			slog.Int("losers", len(l)),
		)
		return model.ErrBracketStalled
	}

	for _, m := range created {
		linkPrevious(t, m)
	}

	e.logger.Info("elimination round paired",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("round", round),
		slog.Int("matches", len(created)),
	)
	return nil
}

func (e *Engine) dropToLosers(st *format.State, p *model.Player) {
	t := st.Tournament
	t.WinnersBracket = remove(t.WinnersBracket, p.ID)
	t.LosersBracket = append(t.LosersBracket, p.ID)
	p.Bracket = model.BracketSideLower
	st.Touch(p)
}

func (e *Engine) eliminate(st *format.State, p *model.Player) {
	t := st.Tournament
	t.LosersBracket = remove(t.LosersBracket, p.ID)
	p.Bracket = model.BracketSideNone
	p.Status = model.PlayerStatusEliminated
	st.Touch(p)
}

// linkPrevious records the dependency edges between a new match and each
// participant's previous elimination match
func linkPrevious(t *model.Tournament, next *model.Match) {
	for _, id := range []model.PlayerID{next.Player1, next.Player2} {
		prev := previousMatch(t, id, next.Seq)
		if prev == nil {
			continue
		}
		if prev.Winner() == id {
			prev.WinnerNextMatchID = next.ID
		} else {
			prev.LoserNextMatchID = next.ID
		}
		next.PreviousMatchIDs = append(next.PreviousMatchIDs, prev.ID)
	}
}

func previousMatch(t *model.Tournament, id model.PlayerID, before int) *model.Match {
	var prev *model.Match
	for _, m := range t.Matches {
		if m.Bracket == model.BracketSwiss || m.Seq >= before || !m.Involves(id) {
			continue
		}
		if prev == nil || m.Seq > prev.Seq {
			prev = m
		}
	}
	return prev
}

// nextRound numbers elimination waves independently of any Swiss rounds
func nextRound(t *model.Tournament) int {
	round := 0
	for _, m := range t.Matches {
		if m.Bracket != model.BracketSwiss && m.Round > round {
			round = m.Round
		}
	}
	return round + 1
}

func remove(ids []model.PlayerID, id model.PlayerID) []model.PlayerID {
	return slices.DeleteFunc(ids, func(x model.PlayerID) bool { return x == id })
}
