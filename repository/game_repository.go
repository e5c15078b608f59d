package repository

import (
	"context"
	"fmt"

	"celestia/database"
	"celestia/domain/entities"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q Queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

func newGameRepository(tx Queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Append inserts a game record
func (r *GameRepository) Append(ctx context.Context, g *entities.Game) error {
	if g.Details == nil {
		return fmt.Errorf("game details are required")
	}
	details, err := entities.MarshalGameDetails(g.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO games (user_id, game_type, stake_amount, result, institution_code, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		g.UserID,
		g.GameType,
		g.StakeAmount,
		g.Result,
		g.InstitutionCode,
		details,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return wrapError(fmt.Sprintf("failed to append %s game for user %d", g.GameType, g.UserID), err)
	}
	return nil
}

// ListByUser returns the user's most recent games, newest first
func (r *GameRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Game, error) {
	query := `
		SELECT id, user_id, game_type, stake_amount, result, institution_code, metadata, created_at
		FROM games
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to list games for user %d", userID), err)
	}
	defer rows.Close()

	var games []*entities.Game
	for rows.Next() {
		var g entities.Game
		var details []byte
		if err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.GameType,
			&g.StakeAmount,
			&g.Result,
			&g.InstitutionCode,
			&details,
			&g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		if g.Details, err = entities.UnmarshalGameDetails(details); err != nil {
			return nil, fmt.Errorf("failed to decode details of game %d: %w", g.ID, err)
		}
		games = append(games, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}
