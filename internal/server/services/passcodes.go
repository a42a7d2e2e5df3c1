package services

import (
	"context"

	"github.com/lastmessage-app/server/internal/cryptox"
	"github.com/lastmessage-app/server/internal/server/models"
	"github.com/lastmessage-app/server/internal/server/repositories/passcodes"
)

// PasscodeService is the owner-facing CRUD surface for device passcodes.
type PasscodeService struct {
	repo   passcodes.Repository
	cipher *cryptox.Cipher
}

func NewPasscodeService(repo passcodes.Repository, cipher *cryptox.Cipher) *PasscodeService {
	return &PasscodeService{repo: repo, cipher: cipher}
}

func (s *PasscodeService) Create(ctx context.Context, userID, deviceType, code, recipientEmail string) (*models.Passcode, error) {
	ciphertext, err := s.cipher.EncryptString(code, userID)
	if err != nil {
		return nil, err
	}

	passcode := &models.Passcode{
		UserID:         userID,
		DeviceType:     deviceType,
		Passcode:       ciphertext,
		RecipientEmail: recipientEmail,
	}

	created, err := s.repo.Create(ctx, passcode)
	if err != nil {
		return nil, err
	}

	created.Passcode = code
	return created, nil
}

func (s *PasscodeService) List(ctx context.Context, userID string) ([]*models.Passcode, error) {
	result, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, passcode := range result {
		code, err := s.cipher.DecryptString(passcode.Passcode, userID)
		if err != nil {
			return nil, err
		}
		passcode.Passcode = code
	}

	return result, nil
}

func (s *PasscodeService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
