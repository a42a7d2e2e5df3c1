package passcodes

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, passcode *models.Passcode) (*models.Passcode, error) {
	query := `
		INSERT INTO passcodes (user_id, device_type, passcode, recipient_email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		passcode.UserID, passcode.DeviceType, passcode.Passcode, passcode.RecipientEmail).
		Scan(&passcode.ID, &passcode.CreatedAt, &passcode.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return passcode, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Passcode, error) {
	query := `
		SELECT id, user_id, device_type, passcode, recipient_email, created_at, updated_at
		FROM passcodes
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Passcode
	for rows.Next() {
		p := &models.Passcode{}
		err := rows.Scan(&p.ID, &p.UserID, &p.DeviceType, &p.Passcode, &p.RecipientEmail, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM passcodes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
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
