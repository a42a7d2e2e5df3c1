// Package passcodes provides the PostgreSQL-backed repository for device
// passcodes. The passcode column holds ciphertext.
package passcodes

import (
	"context"

	"github.com/lastmessage-app/server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, passcode *models.Passcode) (*models.Passcode, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Passcode, error)
	Delete(ctx context.Context, userID, id string) error
}
