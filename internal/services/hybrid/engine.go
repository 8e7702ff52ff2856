package hybrid

import (
	"log/slog"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/elimination"
	"github.com/mcoot/tourney/internal/services/format"
	"github.com/mcoot/tourney/internal/services/swiss"
)

// Engine runs a Swiss phase and then a double-elimination phase between the
// top half of the final Swiss standings
type Engine struct {
	swiss       *swiss.Engine
	elimination *elimination.Engine
	logger      *slog.Logger
}

// Ensure Engine implements format.Engine
var _ format.Engine = (*Engine)(nil)

// New creates a new hybrid Engine
func New(swissEngine *swiss.Engine, eliminationEngine *elimination.Engine, logger *slog.Logger) *Engine {
	return &Engine{
		swiss:       swissEngine,
		elimination: eliminationEngine,
		logger:      logger,
	}
}

// Initialize starts the Swiss phase
func (e *Engine) Initialize(st *format.State) error {
	st.Tournament.EliminationStarted = false
	return e.swiss.Initialize(st)
}

// ReceiveMatchResult feeds the Swiss phase until its final round resolves,
// seeds the elimination bracket exactly once, and from then on delegates to
// the elimination engine
func (e *Engine) ReceiveMatchResult(st *format.State, match *model.Match) error {
	t := st.Tournament
	if t.EliminationStarted {
		return e.elimination.ReceiveMatchResult(st, match)
	}

	finished, err := e.swiss.RecordResult(st, match)
	if err != nil || !finished {
		return err
	}

	rows := swiss.Standings(st)
	cut := len(rows) / 2
	qualified := make([]model.PlayerID, 0, cut)
	for i, row := range rows {
		p, err := st.Player(row.PlayerID)
		if err != nil {
			return err
		}
		st.Touch(p)
		if i < cut {
			p.Status = model.PlayerStatusQualified
			qualified = append(qualified, row.PlayerID)
		} else {
			p.Status = model.PlayerStatusEliminated
		}
	}

	t.EliminationStarted = true
	e.logger.Info("hybrid swiss phase completed",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("qualified", len(qualified)),
	)
	return e.elimination.InitializeWith(st, qualified)
}

// DetermineWinner defers to the elimination phase
func (e *Engine) DetermineWinner(st *format.State) (model.PlayerID, error) {
	return e.elimination.DetermineWinner(st)
}
