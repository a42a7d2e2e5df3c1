package checks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/dbx"
	"github.com/lastmessage-app/server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanCheck(row interface{ Scan(...any) error }) (*models.AliveCheck, error) {
	check := &models.AliveCheck{}
	var confirmed, missed sql.NullTime

	err := row.Scan(&check.ID, &check.UserID, &check.Token,
		&check.SentAt, &check.ExpiresAt, &confirmed, &missed)
	if err != nil {
		return nil, err
	}

	if confirmed.Valid {
		check.ConfirmedAt = &confirmed.Time
	}
	if missed.Valid {
		check.MissedAt = &missed.Time
	}

	return check, nil
}

func (r *PostgresRepository) Create(ctx context.Context, check *models.AliveCheck) (*models.AliveCheck, error) {
	query := `
		INSERT INTO alive_checks (user_id, token, sent_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		check.UserID, check.Token, check.SentAt, check.ExpiresAt).Scan(&check.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return check, nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.AliveCheck, error) {
	query := `
		SELECT id, user_id, token, sent_at, expires_at, confirmed_at, missed_at
		FROM alive_checks
		WHERE token = $1
	`

	check, err := scanCheck(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return check, nil
}

func (r *PostgresRepository) Confirm(ctx context.Context, id string, confirmedAt time.Time) (bool, error) {
	query := `
		UPDATE alive_checks SET confirmed_at = $2
		WHERE id = $1 AND confirmed_at IS NULL AND missed_at IS NULL
	`

	return r.execConditional(ctx, query, id, confirmedAt)
}

// ListMissable joins checks to live users only; once a user goes terminal
// their remaining open checks stop mattering.
func (r *PostgresRepository) ListMissable(ctx context.Context, now time.Time) ([]*models.AliveCheck, error) {
	query := `
		SELECT c.id, c.user_id, c.token, c.sent_at, c.expires_at, c.confirmed_at, c.missed_at
		FROM alive_checks c
		JOIN users u ON u.id = c.user_id
		WHERE c.confirmed_at IS NULL
		  AND c.missed_at IS NULL
		  AND c.expires_at < $1
		  AND u.is_deceased = false
		  AND u.messages_sent = false
		ORDER BY c.user_id, c.expires_at
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AliveCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, check)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkMissed(ctx context.Context, id string, missedAt time.Time) (bool, error) {
	query := `
		UPDATE alive_checks SET missed_at = $2
		WHERE id = $1 AND confirmed_at IS NULL AND missed_at IS NULL
	`

	return r.execConditional(ctx, query, id, missedAt)
}

func (r *PostgresRepository) execConditional(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected == 1, nil
}
