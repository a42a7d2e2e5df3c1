package httpapi_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/mailer"
	"github.com/lastmessage-app/server/internal/server/models"
)

// state is a shared in-memory database for the fake repositories.
type state struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*models.User
	checks    map[string]*models.AliveCheck
	messages  map[string]*models.Message
	passcodes map[string]*models.Passcode
}

func newState() *state {
	return &state{
		users:     make(map[string]*models.User),
		checks:    make(map[string]*models.AliveCheck),
		messages:  make(map[string]*models.Message),
		passcodes: make(map[string]*models.Passcode),
	}
}

func (s *state) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type userStore struct{ *state }

func (r userStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID("u")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (r userStore) ListLive(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.User
	for _, user := range r.users {
		if !user.IsDeceased && !user.MessagesSent {
			result = append(result, user)
		}
	}
	return result, nil
}

func (r userStore) SetCheckSent(ctx context.Context, userID string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		t := sentAt
		user.LastCheckSent = &t
	}
	return nil
}

func (r userStore) ResetMissedChecks(ctx context.Context, userID string, confirmedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		t := confirmedAt
		user.LastCheckConfirmed = &t
		user.MissedChecksCount = 0
	}
	return nil
}

func (r userStore) IncrementMissedChecks(ctx context.Context, userID string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.IsDeceased || user.MessagesSent {
		return 0, false, nil
	}
	user.MissedChecksCount++
	return user.MissedChecksCount, true, nil
}

func (r userStore) MarkDeceased(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.MessagesSent {
		return false, nil
	}
	user.IsDeceased = true
	return true, nil
}

func (r userStore) MarkMessagesSent(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok || user.MessagesSent {
		return false, nil
	}
	user.MessagesSent = true
	return true, nil
}

func (r userStore) UpdateCheckFrequency(ctx context.Context, userID string, days int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	user.CheckFrequencyDays = days
	return nil
}

type checkStore struct{ *state }

func (r checkStore) Create(ctx context.Context, check *models.AliveCheck) (*models.AliveCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	check.ID = r.nextID("c")
	r.checks[check.ID] = check
	return check, nil
}

func (r checkStore) GetByToken(ctx context.Context, token string) (*models.AliveCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, check := range r.checks {
		if check.Token == token {
			return check, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r checkStore) Confirm(ctx context.Context, id string, confirmedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	check, ok := r.checks[id]
	if !ok || check.ConfirmedAt != nil || check.MissedAt != nil {
		return false, nil
	}
	t := confirmedAt
	check.ConfirmedAt = &t
	return true, nil
}

func (r checkStore) ListMissable(ctx context.Context, now time.Time) ([]*models.AliveCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.AliveCheck
	for _, check := range r.checks {
		user, ok := r.users[check.UserID]
		if !ok || user.IsDeceased || user.MessagesSent {
			continue
		}
		if check.ConfirmedAt == nil && check.MissedAt == nil && check.ExpiresAt.Before(now) {
			result = append(result, check)
		}
	}
	return result, nil
}

func (r checkStore) MarkMissed(ctx context.Context, id string, missedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	check, ok := r.checks[id]
	if !ok || check.ConfirmedAt != nil || check.MissedAt != nil {
		return false, nil
	}
	t := missedAt
	check.MissedAt = &t
	return true, nil
}

type messageStore struct{ *state }

func (r messageStore) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *message
	stored.ID = r.nextID("m")
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.messages[stored.ID] = &stored
	row := stored
	return &row, nil
}

func (r messageStore) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Message
	for _, message := range r.messages {
		if message.UserID == userID {
			row := *message
			result = append(result, &row)
		}
	}
	return result, nil
}

func (r messageStore) GetByID(ctx context.Context, userID, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok || message.UserID != userID {
		return nil, common.ErrorNotFound
	}
	row := *message
	return &row, nil
}

func (r messageStore) Update(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.messages[message.ID]
	if !ok || existing.UserID != message.UserID {
		return common.ErrorNotFound
	}
	existing.RecipientEmail = message.RecipientEmail
	existing.Content = message.Content
	return nil
}

func (r messageStore) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok || message.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.messages, id)
	return nil
}

type passcodeStore struct{ *state }

func (r passcodeStore) Create(ctx context.Context, passcode *models.Passcode) (*models.Passcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *passcode
	stored.ID = r.nextID("p")
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.passcodes[stored.ID] = &stored
	row := stored
	return &row, nil
}

func (r passcodeStore) ListByUser(ctx context.Context, userID string) ([]*models.Passcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Passcode
	for _, passcode := range r.passcodes {
		if passcode.UserID == userID {
			row := *passcode
			result = append(result, &row)
		}
	}
	return result, nil
}

func (r passcodeStore) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	passcode, ok := r.passcodes[id]
	if !ok || passcode.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.passcodes, id)
	return nil
}

type memNotifier struct {
	mu   sync.Mutex
	sent []*mailer.Email
}

func (n *memNotifier) Send(ctx context.Context, email *mailer.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, email)
	return nil
}

func (n *memNotifier) last() *mailer.Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return nil
	}
	return n.sent[len(n.sent)-1]
}
