package users

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

const userColumns = `id, email, password_hash, check_frequency_days,
	last_check_sent, last_check_confirmed, missed_checks_count,
	is_deceased, messages_sent, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var lastSent, lastConfirmed sql.NullTime

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CheckFrequencyDays,
		&lastSent, &lastConfirmed, &user.MissedChecksCount,
		&user.IsDeceased, &user.MessagesSent, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastSent.Valid {
		user.LastCheckSent = &lastSent.Time
	}
	if lastConfirmed.Valid {
		user.LastCheckConfirmed = &lastConfirmed.Time
	}

	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, check_frequency_days)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.CheckFrequencyDays).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ListLive(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE is_deceased = false AND messages_sent = false
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetCheckSent(ctx context.Context, userID string, sentAt time.Time) error {
	query := `
		UPDATE users SET last_check_sent = $2, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, sentAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ResetMissedChecks(ctx context.Context, userID string, confirmedAt time.Time) error {
	query := `
		UPDATE users
		SET last_check_confirmed = $2, missed_checks_count = 0, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID, confirmedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// IncrementMissedChecks is a read-modify-write on a single row; the guard on
// is_deceased/messages_sent keeps a concurrent evaluator from bumping a user
// whose machine already went terminal.
func (r *PostgresRepository) IncrementMissedChecks(ctx context.Context, userID string) (int, bool, error) {
	query := `
		UPDATE users
		SET missed_checks_count = missed_checks_count + 1, updated_at = now()
		WHERE id = $1 AND is_deceased = false AND messages_sent = false
		RETURNING missed_checks_count
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("db error: %w", err)
	}

	return count, true, nil
}

func (r *PostgresRepository) MarkDeceased(ctx context.Context, userID string) (bool, error) {
	query := `
		UPDATE users SET is_deceased = true, updated_at = now()
		WHERE id = $1 AND messages_sent = false
	`

	return r.execCheckAndSet(ctx, query, userID)
}

func (r *PostgresRepository) MarkMessagesSent(ctx context.Context, userID string) (bool, error) {
	query := `
		UPDATE users SET messages_sent = true, updated_at = now()
		WHERE id = $1 AND messages_sent = false
	`

	return r.execCheckAndSet(ctx, query, userID)
}

func (r *PostgresRepository) UpdateCheckFrequency(ctx context.Context, userID string, days int) error {
	query := `
		UPDATE users SET check_frequency_days = $2, updated_at = now()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, userID, days)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) execCheckAndSet(ctx context.Context, query string, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return affected == 1, nil
}
