package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tourney/internal/model"
	"github.com/mcoot/tourney/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)
	pipe.SAdd(ctx, s.keys.playerIndex(), string(player.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayers(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error) {
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.player(id)
	}
	return s.mgetPlayers(ctx, keys, true)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.SMembers(ctx, s.keys.playerIndex()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.player(model.PlayerID(id))
	}
	players, err := s.mgetPlayers(ctx, keys, false)
	if err != nil {
		return nil, err
	}
	storage.SortPlayers(players)
	return players, nil
}

// mgetPlayers loads players in key order. Missing keys are an error when
// strict, and skipped otherwise.
func (s *Storage) mgetPlayers(ctx context.Context, keys []string, strict bool) ([]*model.Player, error) {
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	players := make([]*model.Player, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			if strict {
				return nil, model.ErrPlayerNotFound
			}
			continue
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, err
		}
		players = append(players, &player)
	}
	return players, nil
}

// Tournament operations

// SaveTournament uses WATCH on the aggregate key so that two writers racing
// on the same loaded version cannot both commit
func (s *Storage) SaveTournament(ctx context.Context, t *model.Tournament, players []*model.Player) error {
	key := s.keys.tournament(t.ID)

	next := t.Clone()
	next.Version = t.Version + 1
	payload, err := json.Marshal(next)
	if err != nil {
		return err
	}
	playerData := make(map[model.PlayerID][]byte, len(players))
	for _, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		playerData[p.ID] = data
	}

	txf := func(tx *redis.Tx) error {
		stored, err := s.storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if stored != t.Version {
			return model.ErrConcurrentModification
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			pipe.SAdd(ctx, s.keys.tournamentIndex(), string(t.ID))
			if len(t.Matches) > 0 {
				index := make(map[string]any, len(t.Matches))
				for _, m := range t.Matches {
					index[string(m.ID)] = string(t.ID)
				}
				pipe.HSet(ctx, s.keys.matchIndex(), index)
			}
			for id, data := range playerData {
				pipe.Set(ctx, s.keys.player(id), data, 0)
				pipe.SAdd(ctx, s.keys.playerIndex(), string(id))
			}
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return model.ErrConcurrentModification
		}
		return err
	}
	t.Version = next.Version
	return nil
}

func (s *Storage) storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	var existing struct{ Version int64 }
	if err := json.Unmarshal(data, &existing); err != nil {
		return 0, err
	}
	return existing.Version, nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	data, err := s.client.Get(ctx, s.keys.tournament(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTournamentNotFound
		}
		return nil, err
	}

	var t model.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) ListTournaments(ctx context.Context) ([]model.TournamentSummary, error) {
	ids, err := s.client.SMembers(ctx, s.keys.tournamentIndex()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.TournamentSummary, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.tournament(model.TournamentID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var t model.Tournament
		if err := json.Unmarshal([]byte(str), &t); err != nil {
			return nil, err
		}
		out = append(out, t.Summary())
	}
	storage.SortSummaries(out)
	return out, nil
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.tournament(id))
	pipe.SRem(ctx, s.keys.tournamentIndex(), string(id))
	if len(t.Matches) > 0 {
		fields := make([]string, len(t.Matches))
		for i, m := range t.Matches {
			fields[i] = string(m.ID)
		}
		pipe.HDel(ctx, s.keys.matchIndex(), fields...)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Match operations

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	tournamentID, err := s.client.HGet(ctx, s.keys.matchIndex(), string(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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

	pipe := s.client.Pipeline()
	touched := make(map[model.PlayerID]bool)
	for _, c := range changes {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, s.keys.history(c.PlayerID), data)
		touched[c.PlayerID] = true
	}
	if s.cfg.HistoryTTL > 0 {
		for id := range touched {
			pipe.Expire(ctx, s.keys.history(id), s.cfg.HistoryTTL)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRatingHistory(ctx context.Context, playerID model.PlayerID) ([]model.RatingChange, error) {
	values, err := s.client.LRange(ctx, s.keys.history(playerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.RatingChange, 0, len(values))
	for _, v := range values {
		var c model.RatingChange
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
