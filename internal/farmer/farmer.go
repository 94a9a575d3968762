// Package farmer persists the farm profile and conversation history in
// PostgreSQL.
//
// The engine serves a single farm: the active profile is simply the most
// recently saved row, and every saved profile supersedes the previous one
// without deleting it.
package farmer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile describes the farm that answers are personalized for. LandSize
// is free text ("2.5", "about 3") because it is echoed into prompts, not
// computed with.
type Profile struct {
	ID               int64     `json:"id"`
	Location         string    `json:"location"`
	LandSize         string    `json:"landSize"`
	SoilType         string    `json:"soilType"`
	IrrigationMethod string    `json:"irrigationMethod"`
	WaterSource      string    `json:"waterSource"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ChatTurn is one question/answer exchange. FarmerID is zero when the
// turn happened before any profile was saved.
type ChatTurn struct {
	ID        int64     `json:"id"`
	FarmerID  int64     `json:"farmerId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store provides access to farm profiles and chat history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveProfile inserts a new profile row and returns its ID. Profiles are
// append-only; the newest row wins.
func (s *Store) SaveProfile(ctx context.Context, p Profile) (int64, error) {
	const query = `
		INSERT INTO farmers (location, land_size, soil_type, irrigation_method, water_source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		p.Location, p.LandSize, p.SoilType, p.IrrigationMethod, p.WaterSource).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting farmer profile: %w", err)
	}
	return id, nil
}

// CurrentProfile returns the most recently saved profile, or nil when no
// profile has been saved yet.
func (s *Store) CurrentProfile(ctx context.Context) (*Profile, error) {
	const query = `
		SELECT id, location, land_size, soil_type, irrigation_method, water_source, created_at
		FROM farmers
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var p Profile
	err := s.pool.QueryRow(ctx, query).Scan(
		&p.ID, &p.Location, &p.LandSize, &p.SoilType,
		&p.IrrigationMethod, &p.WaterSource, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying farmer profile: %w", err)
	}
	return &p, nil
}

// SaveChatTurn records one exchange. A zero FarmerID is stored as NULL.
func (s *Store) SaveChatTurn(ctx context.Context, turn ChatTurn) error {
	const query = `
		INSERT INTO chat_history (farmer_id, question, answer)
		VALUES (NULLIF($1, 0), $2, $3)`

	if _, err := s.pool.Exec(ctx, query, turn.FarmerID, turn.Question, turn.Answer); err != nil {
		return fmt.Errorf("inserting chat turn: %w", err)
	}
	return nil
}

// RecentHistory returns the latest chat turns, newest first.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]ChatTurn, error) {
	const query = `
		SELECT id, COALESCE(farmer_id, 0), question, answer, created_at
		FROM chat_history
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var turns []ChatTurn
	for rows.Next() {
		var t ChatTurn
		if err := rows.Scan(&t.ID, &t.FarmerID, &t.Question, &t.Answer, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat history: %w", err)
	}
	return turns, nil
}
