package services

import (
	"context"

	"github.com/lastmessage-app/server/internal/cryptox"
	"github.com/lastmessage-app/server/internal/server/models"
	"github.com/lastmessage-app/server/internal/server/repositories/messages"
)

// MessageService is the owner-facing CRUD surface for final messages.
// Content is encrypted with the owner's derived key before it reaches the
// repository and decrypted on the way out.
type MessageService struct {
	repo   messages.Repository
	cipher *cryptox.Cipher
}

func NewMessageService(repo messages.Repository, cipher *cryptox.Cipher) *MessageService {
	return &MessageService{repo: repo, cipher: cipher}
}

func (s *MessageService) Create(ctx context.Context, userID, recipientEmail, content string) (*models.Message, error) {
	ciphertext, err := s.cipher.EncryptString(content, userID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		UserID:         userID,
		RecipientEmail: recipientEmail,
		Content:        ciphertext,
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, err
	}

	created.Content = content
	return created, nil
}

func (s *MessageService) List(ctx context.Context, userID string) ([]*models.Message, error) {
	result, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, message := range result {
		content, err := s.cipher.DecryptString(message.Content, userID)
		if err != nil {
			return nil, err
		}
		message.Content = content
	}

	return result, nil
}

func (s *MessageService) Get(ctx context.Context, userID, id string) (*models.Message, error) {
	message, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	content, err := s.cipher.DecryptString(message.Content, userID)
	if err != nil {
		return nil, err
	}
	message.Content = content

	return message, nil
}

func (s *MessageService) Update(ctx context.Context, userID, id, recipientEmail, content string) error {
	ciphertext, err := s.cipher.EncryptString(content, userID)
	if err != nil {
		return err
	}

	return s.repo.Update(ctx, &models.Message{
		ID:             id,
		UserID:         userID,
		RecipientEmail: recipientEmail,
		Content:        ciphertext,
	})
}

func (s *MessageService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
