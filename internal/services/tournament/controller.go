package tournament

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/tourney/internal/dependencies/clock"
	"github.com/mcoot/tourney/internal/dependencies/ids"
	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/services/elimination"
	"github.com/mcoot/tourney/internal/services/format"
	"github.com/mcoot/tourney/internal/services/hybrid"
	"github.com/mcoot/tourney/internal/services/rating"
	"github.com/mcoot/tourney/internal/services/swiss"
	"github.com/mcoot/tourney/internal/storage"
)

// Controller is the entry point for tournament lifecycle operations. Every
// mutating operation runs under a per-tournament lock, works on a private
// copy of the aggregate and commits it in a single versioned save.
type Controller struct {
	storage     storage.Storage
	swiss       *swiss.Engine
	elimination *elimination.Engine
	hybrid      *hybrid.Engine
	ids         ids.Generator
	clock       clock.Clock
	logger      *slog.Logger
	locks       *lockTable
}

// NewController creates a new tournament Controller
func NewController(
	storage storage.Storage,
	swissEngine *swiss.Engine,
	eliminationEngine *elimination.Engine,
	hybridEngine *hybrid.Engine,
	ids ids.Generator,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		swiss:       swissEngine,
		elimination: eliminationEngine,
		hybrid:      hybridEngine,
		ids:         ids,
		clock:       clock,
		logger:      logger,
		locks:       newLockTable(),
	}
}

// CreateTournamentParams describes a new tournament
type CreateTournamentParams struct {
	Name   string
	Format model.Format
	Band   model.RatingBand
}

// engine returns the engine for a format
func (c *Controller) engine(f model.Format) (format.Engine, error) {
	switch f {
	case model.FormatSwiss:
		return c.swiss, nil
	case model.FormatDoubleElimination:
		return c.elimination, nil
	case model.FormatHybrid:
		return c.hybrid, nil
	default:
		return nil, model.ErrUnsupportedFormat
	}
}

// Player operations

// RegisterPlayer creates a player. A zero rating means the default rating.
func (c *Controller) RegisterPlayer(ctx context.Context, name string, rating float64) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrPlayerNameMissing
	}
	if rating == 0 {
		rating = model.DefaultRating
	}
	if rating < 0 {
		return nil, model.ErrInvalidRating
	}

	now := c.clock.Now()
	player := &model.Player{
		ID:        model.PlayerID(c.ids.NewID()),
		Name:      name,
		Rating:    rating,
		Status:    model.PlayerStatusQualified,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	c.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.Float64("rating", rating),
	)
	return player, nil
}

// GetPlayer retrieves a player by ID
func (c *Controller) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return c.storage.GetPlayer(ctx, id)
}

// ListPlayers returns every registered player
func (c *Controller) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return c.storage.ListPlayers(ctx)
}

// RankedPlayers returns the global leaderboard of every registered player
func (c *Controller) RankedPlayers(ctx context.Context) ([]model.PlayerRanking, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return rating.Rank(players), nil
}

// RatingHistory returns a player's rating changes, oldest first
func (c *Controller) RatingHistory(ctx context.Context, id model.PlayerID) ([]model.RatingChange, error) {
	if _, err := c.storage.GetPlayer(ctx, id); err != nil {
		return nil, err
	}
	return c.storage.GetRatingHistory(ctx, id)
}

// Tournament administration

// CreateTournament creates a SCHEDULED tournament with no players
func (c *Controller) CreateTournament(ctx context.Context, params CreateTournamentParams) (*model.Tournament, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, model.ErrTournamentNameMissing
	}
	if !params.Format.Valid() {
		return nil, model.ErrUnsupportedFormat
	}
	if !params.Band.Valid() {
		return nil, model.ErrInvalidRatingBand
	}

	now := c.clock.Now()
	t := &model.Tournament{
		ID:        model.TournamentID(c.ids.NewID()),
		Name:      name,
		Format:    params.Format,
		Status:    model.TournamentStatusScheduled,
		Band:      params.Band,
		Players:   []model.PlayerID{},
		Matches:   []*model.Match{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveTournament(ctx, t, nil); err != nil {
		c.logger.Error("failed to save tournament",
			slog.String("tournament_id", string(t.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("tournament created",
		slog.String("tournament_id", string(t.ID)),
		slog.String("format", string(t.Format)),
	)
	return t, nil
}

// GetTournament retrieves a tournament by ID
func (c *Controller) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	return c.storage.GetTournament(ctx, id)
}

// ListTournaments returns a summary of every tournament, newest first
func (c *Controller) ListTournaments(ctx context.Context) ([]model.TournamentSummary, error) {
	return c.storage.ListTournaments(ctx)
}

// GetMatch retrieves a match by ID
func (c *Controller) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, id)
}

// UpdateDetails changes the name and rating band of a SCHEDULED tournament
func (c *Controller) UpdateDetails(ctx context.Context, id model.TournamentID, name string, band model.RatingBand) (*model.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrTournamentNameMissing
	}
	if !band.Valid() {
		return nil, model.ErrInvalidRatingBand
	}

	return c.mutate(ctx, id, "update details", func(st *format.State) error {
		t := st.Tournament
		if t.Status != model.TournamentStatusScheduled {
			return model.ErrTournamentNotScheduled
		}
		t.Name = name
		t.Band = band
		return nil
	})
}

// DeleteTournament removes a tournament that has not started
func (c *Controller) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	unlock := c.locks.lock(id)
	defer unlock()

	t, err := c.storage.GetTournament(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != model.TournamentStatusScheduled {
		return model.ErrTournamentNotScheduled
	}
	if err := c.storage.DeleteTournament(ctx, id); err != nil {
		return err
	}

	c.logger.Info("tournament deleted", slog.String("tournament_id", string(id)))
	return nil
}

// Lifecycle operations

// AssignPlayers adds players to a SCHEDULED tournament. Players outside the
// tournament's rating band are skipped; players already on the roster are
// ignored.
func (c *Controller) AssignPlayers(ctx context.Context, id model.TournamentID, playerIDs []model.PlayerID) (*model.Tournament, error) {
	if len(playerIDs) == 0 {
		return nil, model.ErrNoPlayers
	}

	return c.mutate(ctx, id, "assign players", func(st *format.State) error {
		t := st.Tournament
		if t.Status != model.TournamentStatusScheduled {
			return model.ErrTournamentNotScheduled
		}

		candidates, err := c.storage.GetPlayers(ctx, playerIDs)
		if err != nil {
			return err
		}

		eligible := 0
		for _, p := range candidates {
			if !t.Band.Contains(p.Rating) {
				c.logger.Info("player outside rating band",
					slog.String("tournament_id", string(t.ID)),
					slog.String("player_id", string(p.ID)),
					slog.Float64("rating", p.Rating),
				)
				continue
			}
			eligible++
			if t.HasPlayer(p.ID) {
				continue
			}
			t.Players = append(t.Players, p.ID)
			st.Players[p.ID] = p
		}
		if eligible == 0 {
			return model.ErrNoEligiblePlayers
		}
		return nil
	})
}

// StartTournament validates the roster, moves the tournament to ONGOING and
// schedules its opening matches
func (c *Controller) StartTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	t, err := c.mutate(ctx, id, "start", func(st *format.State) error {
		t := st.Tournament
		if t.Status != model.TournamentStatusScheduled {
			return model.ErrTournamentNotScheduled
		}
		if err := validateRoster(t.Format, len(t.Players)); err != nil {
			return err
		}
		engine, err := c.engine(t.Format)
		if err != nil {
			return err
		}

		for _, p := range st.RosterPlayers() {
			p.ResetForTournament()
			st.Touch(p)
		}
		t.Status = model.TournamentStatusOngoing
		return engine.Initialize(st)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("tournament started",
		slog.String("tournament_id", string(t.ID)),
		slog.Int("players", len(t.Players)),
		slog.Int("matches", len(t.Matches)),
	)
	return t, nil
}

// validateRoster enforces the structural rules for starting a tournament
func validateRoster(f model.Format, n int) error {
	if n < 2 {
		return model.ErrInsufficientPlayers
	}
	if n%2 != 0 {
		return model.ErrOddPlayerCount
	}
	switch f {
	case model.FormatDoubleElimination:
		if !format.IsPowerOfTwo(n) {
			return model.ErrNotPowerOfTwo
		}
	case model.FormatHybrid:
		if !format.IsPowerOfTwo(n) {
			return model.ErrNotPowerOfTwo
		}
		if n < 4 {
			return model.ErrHybridTooSmall
		}
	}
	return nil
}

// BeginMatch marks a SCHEDULED or WAITING match as in play
func (c *Controller) BeginMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	ref, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var begun *model.Match
	_, err = c.mutate(ctx, ref.TournamentID, "begin match", func(st *format.State) error {
		t := st.Tournament
		m := t.GetMatch(matchID)
		if m == nil {
			return model.ErrMatchNotFound
		}
		switch m.Status {
		case model.MatchStatusScheduled, model.MatchStatusWaiting:
		case model.MatchStatusPending:
			begun = m
			return nil
		case model.MatchStatusCompleted:
			return model.ErrMatchAlreadyRecorded
		default:
			return model.ErrMatchNotPlayable
		}
		if t.Status != model.TournamentStatusOngoing {
			return model.ErrTournamentNotOngoing
		}
		m.Status = model.MatchStatusPending
		begun = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return begun.Clone(), nil
}

// InputResult records the scores of a PENDING match and lets the format
// engine advance the tournament
func (c *Controller) InputResult(ctx context.Context, matchID model.MatchID, player1Score, player2Score int) (*model.Tournament, error) {
	ref, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	return c.mutate(ctx, ref.TournamentID, "input result", func(st *format.State) error {
		t := st.Tournament
		m := t.GetMatch(matchID)
		if m == nil {
			return model.ErrMatchNotFound
		}

		if player1Score < 0 || player2Score < 0 {
			return model.ErrNegativeScore
		}
		if player1Score+player2Score == 0 {
			return model.ErrZeroScore
		}
		if player1Score == player2Score && !DrawAllowed(t.Format, m.Bracket) {
			return model.ErrDrawNotAllowed
		}
		switch m.Status {
		case model.MatchStatusScheduled, model.MatchStatusWaiting:
			return model.ErrMatchNotPlayed
		case model.MatchStatusCompleted:
			return model.ErrMatchAlreadyRecorded
		case model.MatchStatusPending:
		default:
			return model.ErrMatchNotPlayable
		}
		if t.Status != model.TournamentStatusOngoing {
			return model.ErrTournamentNotOngoing
		}

		engine, err := c.engine(t.Format)
		if err != nil {
			return err
		}

		m.Player1Score = player1Score
		m.Player2Score = player2Score
		m.Status = model.MatchStatusCompleted
		if err := tallyRecord(st, m); err != nil {
			return err
		}

		c.logger.Info("match result recorded",
			slog.String("tournament_id", string(t.ID)),
			slog.String("match_id", string(m.ID)),
			slog.Int("player1_score", player1Score),
			slog.Int("player2_score", player2Score),
		)
		return engine.ReceiveMatchResult(st, m)
	})
}

// DrawAllowed reports whether a level score is legal for a match. Deciders
// and every elimination match must produce a winner.
func DrawAllowed(f model.Format, bracket model.BracketType) bool {
	return f.AllowsDraws() && bracket == model.BracketSwiss
}

// tallyRecord updates the participants' cumulative win/loss/draw record
func tallyRecord(st *format.State, m *model.Match) error {
	p1, err := st.Player(m.Player1)
	if err != nil {
		return err
	}
	p2, err := st.Player(m.Player2)
	if err != nil {
		return err
	}
	st.Touch(p1, p2)
	switch m.Winner() {
	case p1.ID:
		p1.Wins++
		p2.Losses++
	case p2.ID:
		p2.Wins++
		p1.Losses++
	default:
		p1.Draws++
		p2.Draws++
	}
	return nil
}

// DetermineWinner returns the winner of a COMPLETED tournament
func (c *Controller) DetermineWinner(ctx context.Context, id model.TournamentID) (*model.Player, error) {
	st, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	t := st.Tournament
	if t.Status != model.TournamentStatusCompleted {
		return nil, model.ErrTournamentNotCompleted
	}
	engine, err := c.engine(t.Format)
	if err != nil {
		return nil, err
	}

	winnerID, err := engine.DetermineWinner(st)
	if err != nil {
		c.logInvariant(t.ID, "determine winner", err)
		return nil, err
	}
	return st.Player(winnerID)
}

// Standings returns the ranked Swiss table of a Swiss or hybrid tournament
func (c *Controller) Standings(ctx context.Context, id model.TournamentID) ([]model.Standing, error) {
	st, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Tournament.Format == model.FormatDoubleElimination {
		return nil, model.ErrUnsupportedFormat
	}
	return swiss.Standings(st), nil
}

// load reads a tournament and its roster without taking the lock
func (c *Controller) load(ctx context.Context, id model.TournamentID) (*format.State, error) {
	t, err := c.storage.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	players, err := c.storage.GetPlayers(ctx, t.Players)
	if err != nil {
		return nil, err
	}
	return format.NewState(t, players, c.clock.Now(), c.ids), nil
}

// mutate runs fn against a fresh copy of the tournament under its lock and
// commits the result. Nothing is written if fn fails.
func (c *Controller) mutate(ctx context.Context, id model.TournamentID, op string, fn func(st *format.State) error) (*model.Tournament, error) {
	unlock := c.locks.lock(id)
	defer unlock()

	st, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		c.logInvariant(id, op, err)
		return nil, err
	}

	t := st.Tournament
	t.UpdatedAt = st.Now
	if err := c.storage.SaveTournament(ctx, t, st.TouchedPlayers()); err != nil {
		c.logger.Error("failed to save tournament",
			slog.String("tournament_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if len(st.RatingChanges) > 0 {
		if err := c.storage.AppendRatingChanges(ctx, st.RatingChanges); err != nil {
			c.logger.Warn("failed to append rating history",
				slog.String("tournament_id", string(id)),
				slog.Int("changes", len(st.RatingChanges)),
				slog.String("error", err.Error()),
			)
		}
	}
	return t, nil
}

func (c *Controller) logInvariant(id model.TournamentID, op string, err error) {
	if !errors.Is(err, model.ErrInvariant) {
		return
	}
	c.logger.Error("tournament invariant violated",
		slog.String("tournament_id", string(id)),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
