// Package messages provides the PostgreSQL-backed repository for final
// messages. Content is stored as ciphertext; this layer never sees plaintext.
package messages

import (
	"context"

	"github.com/lastmessage-app/server/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Message, error)
	GetByID(ctx context.Context, userID, id string) (*models.Message, error)
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, userID, id string) error
}
