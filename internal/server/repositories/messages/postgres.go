package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (user_id, recipient_email, message_content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		message.UserID, message.RecipientEmail, message.Content).
		Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
	query := `
		SELECT id, user_id, recipient_email, message_content, created_at, updated_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m := &models.Message{}
		err := rows.Scan(&m.ID, &m.UserID, &m.RecipientEmail, &m.Content, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Message, error) {
	query := `
		SELECT id, user_id, recipient_email, message_content, created_at, updated_at
		FROM messages
		WHERE id = $1 AND user_id = $2
	`

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&m.ID, &m.UserID, &m.RecipientEmail, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, message *models.Message) error {
	query := `
		UPDATE messages
		SET recipient_email = $3, message_content = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`

	return r.execOwned(ctx, query, message.ID, message.UserID, message.RecipientEmail, message.Content)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM messages WHERE id = $1 AND user_id = $2`

	return r.execOwned(ctx, query, id, userID)
}

func (r *PostgresRepository) execOwned(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
