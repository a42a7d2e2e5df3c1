package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lastmessage-app/server/internal/cryptox"
	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/server/config"
)

type engine struct {
	store    *fakeStore
	notifier *fakeNotifier
	cipher   *cryptox.Cipher
	checks   *CheckService
	releaser *Releaser
	eval     *Evaluator
	cycle    *Cycle
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AppURL = "http://app.test"
	cfg.OpTimeout = 5 * time.Second

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := newFakeStore()
	notifier := newFakeNotifier()
	cipher := cryptox.NewCipher(cfg.SecretKey)

	checkService := NewCheckService(store, checksRepo{store}, notifier, logger, cfg)
	releaser := NewReleaser(store, messagesRepo{store}, passcodesRepo{store}, cipher, notifier, logger, cfg)
	eval := NewEvaluator(store, checksRepo{store}, releaser, logger, cfg)

	return &engine{
		store:    store,
		notifier: notifier,
		cipher:   cipher,
		checks:   checkService,
		releaser: releaser,
		eval:     eval,
		cycle:    NewCycle(checkService, eval, logger),
	}
}

// setNow pins the engine clock to *now; tests advance it by reassigning the
// pointed-to value.
func setNow(t *testing.T, now *time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return *now }
	t.Cleanup(func() { timeNow = orig })
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
