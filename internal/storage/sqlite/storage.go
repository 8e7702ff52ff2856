package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Storage is a SQLite-backed implementation of the storage interface.
// Tournaments are stored as JSON aggregates alongside indexed columns.
type Storage struct {
	db *sqlx.DB
}

// New opens the database, enables foreign keys and applies migrations
func New(cfg Config) (*Storage, error) {
	db, err := sqlx.Connect("sqlite3", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if strings.Contains(cfg.DSN, ":memory:") {
		// Every connection to :memory: opens a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const upsertPlayer = `INSERT INTO players (id, name, rating, wins, losses, draws, points, bracket, status, created_at, updated_at)
	VALUES (:id, :name, :rating, :wins, :losses, :draws, :points, :bracket, :status, :created_at, :updated_at)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		rating = excluded.rating,
		wins = excluded.wins,
		losses = excluded.losses,
		draws = excluded.draws,
		points = excluded.points,
		bracket = excluded.bracket,
		status = excluded.status,
		updated_at = excluded.updated_at`

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.NamedExecContext(ctx, upsertPlayer, toPlayerRow(player))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM players WHERE id = ?", string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error) {
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}
	args := make([]string, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}
	query, params, err := sqlx.In("SELECT * FROM players WHERE id IN (?)", args)
	if err != nil {
		return nil, err
	}
	var rows []playerRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), params...); err != nil {
		return nil, err
	}

	byID := make(map[model.PlayerID]*model.Player, len(rows))
	for _, row := range rows {
		byID[model.PlayerID(row.ID)] = row.toModel()
	}
	out := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, model.ErrPlayerNotFound
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var rows []playerRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM players ORDER BY id ASC"); err != nil {
		return nil, err
	}
	out := make([]*model.Player, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

// Tournament operations

func (s *Storage) SaveTournament(ctx context.Context, t *model.Tournament, players []*model.Player) error {
	next := t.Clone()
	next.Version = t.Version + 1
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	row := tournamentRow{
		ID:        string(t.ID),
		Name:      t.Name,
		Format:    string(t.Format),
		Status:    string(t.Status),
		Version:   next.Version,
		CreatedAt: toUnix(t.CreatedAt),
		Data:      string(data),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if t.Version == 0 {
		res, err = tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, format, status, version, created_at, data)
			VALUES (:id, :name, :format, :status, :version, :created_at, :data)
			ON CONFLICT(id) DO NOTHING`, row)
	} else {
		res, err = tx.ExecContext(ctx, `UPDATE tournaments SET name = ?, format = ?, status = ?, version = ?, data = ?
			WHERE id = ? AND version = ?`,
			row.Name, row.Format, row.Status, row.Version, row.Data, row.ID, t.Version)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrConcurrentModification
	}

	for _, m := range t.Matches {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO match_index (match_id, tournament_id) VALUES (?, ?)",
			string(m.ID), string(t.ID)); err != nil {
			return err
		}
	}
	for _, p := range players {
		if _, err := tx.NamedExecContext(ctx, upsertPlayer, toPlayerRow(p)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	t.Version = next.Version
	return nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT data FROM tournaments WHERE id = ?", string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrTournamentNotFound
		}
		return nil, err
	}
	var t model.Tournament
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) ListTournaments(ctx context.Context) ([]model.TournamentSummary, error) {
	var rows []tournamentRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM tournaments"); err != nil {
		return nil, err
	}
	out := make([]model.TournamentSummary, 0, len(rows))
	for _, row := range rows {
		var t model.Tournament
		if err := json.Unmarshal([]byte(row.Data), &t); err != nil {
			return nil, err
		}
		out = append(out, t.Summary())
	}
	storage.SortSummaries(out)
	return out, nil
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM match_index WHERE tournament_id = ?", string(id)); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM tournaments WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrTournamentNotFound
	}
	return tx.Commit()
}

// Match operations

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var tournamentID string
	err := s.db.GetContext(ctx, &tournamentID, "SELECT tournament_id FROM match_index WHERE match_id = ?", string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	t, err := s.GetTournament(ctx, model.TournamentID(tournamentID))
	if err != nil {
		if errors.Is(err, model.ErrTournamentNotFound) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	m := t.GetMatch(id)
	if m == nil {
		return nil, model.ErrMatchNotFound
	}
	return m, nil
}

// Rating history operations

func (s *Storage) AppendRatingChanges(ctx context.Context, changes []model.RatingChange) error {
	if len(changes) == 0 {
		return nil
	}
	rows := make([]ratingChangeRow, len(changes))
	for i, c := range changes {
		rows[i] = toRatingChangeRow(c)
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO rating_changes (player_id, match_id, old_rating, new_rating, reason, recorded_at)
		VALUES (:player_id, :match_id, :old_rating, :new_rating, :reason, :recorded_at)`, rows)
	return err
}

func (s *Storage) GetRatingHistory(ctx context.Context, playerID model.PlayerID) ([]model.RatingChange, error) {
	var rows []ratingChangeRow
	err := s.db.SelectContext(ctx, &rows, `SELECT player_id, match_id, old_rating, new_rating, reason, recorded_at
		FROM rating_changes WHERE player_id = ? ORDER BY id ASC`, string(playerID))
	if err != nil {
		return nil, err
	}
	out := make([]model.RatingChange, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}
