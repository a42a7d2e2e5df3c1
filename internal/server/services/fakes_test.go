package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lastmessage-app/server/internal/common"
	"github.com/lastmessage-app/server/internal/mailer"
	"github.com/lastmessage-app/server/internal/server/models"
)

// fakeStore is an in-memory stand-in for the postgres repositories. The
// conditional updates replicate the update-where-equals semantics of the real
// queries, which is what the engine's idempotency tests exercise.
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*models.User
	checks    map[string]*models.AliveCheck
	messages  map[string]*models.Message
	passcodes map[string]*models.Passcode

	failIncrement bool
	failReset     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*models.User),
		checks:    make(map[string]*models.AliveCheck),
		messages:  make(map[string]*models.Message),
		passcodes: make(map[string]*models.Passcode),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addUser(user *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = f.nextID("u")
	}
	f.users[user.ID] = user
	return user
}

// --- users.Repository ---

func (f *fakeStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID("u")
	user.CreatedAt = timeNow()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (f *fakeStore) ListLive(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.User
	for _, user := range f.users {
		if !user.IsDeceased && !user.MessagesSent {
			result = append(result, user)
		}
	}
	return result, nil
}

func (f *fakeStore) SetCheckSent(ctx context.Context, userID string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		t := sentAt
		user.LastCheckSent = &t
	}
	return nil
}

func (f *fakeStore) ResetMissedChecks(ctx context.Context, userID string, confirmedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReset {
		return fmt.Errorf("store down")
	}
	if user, ok := f.users[userID]; ok {
		t := confirmedAt
		user.LastCheckConfirmed = &t
		user.MissedChecksCount = 0
	}
	return nil
}

func (f *fakeStore) IncrementMissedChecks(ctx context.Context, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncrement {
		return 0, false, fmt.Errorf("store down")
	}
	user, ok := f.users[userID]
	if !ok || user.IsDeceased || user.MessagesSent {
		return 0, false, nil
	}
	user.MissedChecksCount++
	return user.MissedChecksCount, true, nil
}

func (f *fakeStore) MarkDeceased(ctx context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.MessagesSent {
		return false, nil
	}
	user.IsDeceased = true
	return true, nil
}

func (f *fakeStore) MarkMessagesSent(ctx context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.MessagesSent {
		return false, nil
	}
	user.MessagesSent = true
	return true, nil
}

func (f *fakeStore) UpdateCheckFrequency(ctx context.Context, userID string, days int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	user.CheckFrequencyDays = days
	return nil
}

// --- checks.Repository ---

func (f *fakeStore) CreateCheck(ctx context.Context, check *models.AliveCheck) (*models.AliveCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check.ID = f.nextID("c")
	f.checks[check.ID] = check
	return check, nil
}

func (f *fakeStore) GetByToken(ctx context.Context, token string) (*models.AliveCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, check := range f.checks {
		if check.Token == token {
			return check, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStore) Confirm(ctx context.Context, id string, confirmedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check, ok := f.checks[id]
	if !ok || check.ConfirmedAt != nil || check.MissedAt != nil {
		return false, nil
	}
	t := confirmedAt
	check.ConfirmedAt = &t
	return true, nil
}

func (f *fakeStore) ListMissable(ctx context.Context, now time.Time) ([]*models.AliveCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.AliveCheck
	for _, check := range f.checks {
		user, ok := f.users[check.UserID]
		if !ok || user.IsDeceased || user.MessagesSent {
			continue
		}
		if check.ConfirmedAt == nil && check.MissedAt == nil && check.ExpiresAt.Before(now) {
			result = append(result, check)
		}
	}
	return result, nil
}

func (f *fakeStore) MarkMissed(ctx context.Context, id string, missedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check, ok := f.checks[id]
	if !ok || check.ConfirmedAt != nil || check.MissedAt != nil {
		return false, nil
	}
	t := missedAt
	check.MissedAt = &t
	return true, nil
}

// checksRepo adapts fakeStore to checks.Repository (Create collides with the
// users.Repository method set).
type checksRepo struct{ *fakeStore }

func (r checksRepo) Create(ctx context.Context, check *models.AliveCheck) (*models.AliveCheck, error) {
	return r.CreateCheck(ctx, check)
}

// --- messages.Repository ---

// The real repositories scan fresh rows per query, so the fake hands out
// copies rather than the stored pointers.
type messagesRepo struct{ *fakeStore }

func (r messagesRepo) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *message
	stored.ID = r.nextID("m")
	r.messages[stored.ID] = &stored
	row := stored
	return &row, nil
}

func (r messagesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
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

func (r messagesRepo) GetByID(ctx context.Context, userID, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok || message.UserID != userID {
		return nil, common.ErrorNotFound
	}
	row := *message
	return &row, nil
}

func (r messagesRepo) Update(ctx context.Context, message *models.Message) error {
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

func (r messagesRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok || message.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.messages, id)
	return nil
}

// --- passcodes.Repository ---

type passcodesRepo struct{ *fakeStore }

func (r passcodesRepo) Create(ctx context.Context, passcode *models.Passcode) (*models.Passcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *passcode
	stored.ID = r.nextID("p")
	r.passcodes[stored.ID] = &stored
	row := stored
	return &row, nil
}

func (r passcodesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Passcode, error) {
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

func (r passcodesRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	passcode, ok := r.passcodes[id]
	if !ok || passcode.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.passcodes, id)
	return nil
}

// --- mailer.Notifier ---

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []*mailer.Email
	failTo map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTo: make(map[string]bool)}
}

func (n *fakeNotifier) Send(ctx context.Context, email *mailer.Email) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failTo[email.To] {
		return fmt.Errorf("smtp error")
	}
	n.sent = append(n.sent, email)
	return nil
}

func (n *fakeNotifier) sentTo(to string) []*mailer.Email {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []*mailer.Email
	for _, email := range n.sent {
		if email.To == to {
			result = append(result, email)
		}
	}
	return result
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
