package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const matchSchema = `
CREATE TABLE IF NOT EXISTS match_results (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	winner_id   TEXT        NOT NULL,
	loser_id    TEXT        NOT NULL,
	rounds      INTEGER     NOT NULL,
	vitality    INTEGER     NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// MatchRepository appends finished duels to the archive table. It holds
// history only; no live gameplay state is ever read back from it.
type MatchRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMatchRepository creates the repository and ensures the archive table
// exists.
func NewMatchRepository(ctx context.Context, db *DB, logger *zap.Logger) (*MatchRepository, error) {
	if _, err := db.pool.Exec(ctx, matchSchema); err != nil {
		return nil, fmt.Errorf("ensure match_results table: %w", err)
	}
	return &MatchRepository{db: db, logger: logger}, nil
}

// RecordResult appends one finished duel. vitality is the final absolute
// track value.
func (r *MatchRepository) RecordResult(ctx context.Context, sessionID, winnerID, loserID string, rounds, vitality int) error {
	const q = `
		INSERT INTO match_results (session_id, winner_id, loser_id, rounds, vitality)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.pool.Exec(ctx, q, sessionID, winnerID, loserID, rounds, vitality); err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}

	r.logger.Info("match result archived",
		zap.String("session_id", sessionID),
		zap.String("winner_id", winnerID),
		zap.Int("rounds", rounds),
	)
	return nil
}
