package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nba-predictions-go/models"
)

const predictionColumns = `id, user_id, username, team_name, opponent, bet_type, actual_outcome, outcome, created_at`

// SQLPredictionRepository stores predictions in the predictions table
type SQLPredictionRepository struct {
	db *SQLDB
}

// NewSQLPredictionRepository creates a repository over an open SQL handle
func NewSQLPredictionRepository(db *SQLDB) *SQLPredictionRepository {
	return &SQLPredictionRepository{db: db}
}

// Insert stores a prediction, assigning its id and (when unset) its creation time
func (r *SQLPredictionRepository) Insert(ctx context.Context, prediction *models.Prediction) (*models.Prediction, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	stored := *prediction
	stored.ID = uuid.NewString()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.CreatedAt = stored.CreatedAt.UTC()

	var outcome sql.NullBool
	if stored.Outcome != nil {
		outcome = sql.NullBool{Bool: *stored.Outcome, Valid: true}
	}

	query := r.db.rebind(`INSERT INTO predictions (` + predictionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.conn.ExecContext(ctx, query,
		stored.ID, stored.UserID, stored.Username, stored.TeamName, stored.Opponent,
		string(stored.BetType), stored.ActualOutcome, outcome, stored.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create prediction: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}
	return &stored, nil
}

// QueryByUser returns a user's predictions, newest first
func (r *SQLPredictionRepository) QueryByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return r.query(ctx, `WHERE user_id = ?`, userID)
}

// QueryByTeam returns every prediction on a team, newest first
func (r *SQLPredictionRepository) QueryByTeam(ctx context.Context, teamName string) ([]models.Prediction, error) {
	return r.query(ctx, `WHERE team_name = ?`, teamName)
}

// QueryAll returns every prediction, newest first
func (r *SQLPredictionRepository) QueryAll(ctx context.Context) ([]models.Prediction, error) {
	return r.query(ctx, ``)
}

func (r *SQLPredictionRepository) query(ctx context.Context, where string, args ...interface{}) ([]models.Prediction, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	query := r.db.rebind(`SELECT ` + predictionColumns + ` FROM predictions ` + where + ` ORDER BY created_at DESC`)
	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]models.Prediction, 0)
	for rows.Next() {
		var (
			p       models.Prediction
			betType string
			outcome sql.NullBool
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.TeamName, &p.Opponent,
			&betType, &p.ActualOutcome, &outcome, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to decode prediction: %w", err)
		}
		p.BetType = models.BetType(betType)
		if outcome.Valid {
			v := outcome.Bool
			p.Outcome = &v
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return predictions, nil
}
