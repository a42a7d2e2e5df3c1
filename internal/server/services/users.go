package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/server/auth"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/models"
	"github.com/lastmessage-app/server/internal/server/repositories/users"
)

const defaultCheckFrequencyDays = 7

// UserService handles account registration, login and liveness settings.
type UserService struct {
	repo users.Repository
	cfg  *config.Config
}

func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{repo: repo, cfg: cfg}
}

func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorEmailInUse
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:              email,
		PasswordHash:       string(hash),
		CheckFrequencyDays: defaultCheckFrequencyDays,
	}

	return s.repo.Create(ctx, user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, []byte(s.cfg.SecretKey), s.cfg.AccessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateCheckFrequency changes how often alive checks go out. The frequency
// is clamped to whole days and must be at least one.
func (s *UserService) UpdateCheckFrequency(ctx context.Context, userID string, days int) error {
	if days < 1 {
		return common.ErrorInvalidFrequency
	}

	return s.repo.UpdateCheckFrequency(ctx, userID, days)
}
