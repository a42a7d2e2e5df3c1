// Package server initializes and runs the Last Message server: it opens the
// database, wires the services and the HTTP surface, and handles graceful
// shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/lastmessage-app/server/internal/cryptox"
	"github.com/lastmessage-app/server/internal/logging"
	"github.com/lastmessage-app/server/internal/mailer"
	"github.com/lastmessage-app/server/internal/server/config"
	"github.com/lastmessage-app/server/internal/server/httpapi"
	"github.com/lastmessage-app/server/internal/server/repositories/repomanager"
	"github.com/lastmessage-app/server/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler *httpapi.Handler
	cycle   *services.Cycle
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	notifier, err := mailer.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	if err != nil {
		return nil, fmt.Errorf("smtp init error: %w", err)
	}

	cipher := cryptox.NewCipher(cfg.SecretKey)

	userService := services.NewUserService(repos.Users(), cfg)
	checkService := services.NewCheckService(repos.Users(), repos.Checks(), notifier, logger, cfg)
	messageService := services.NewMessageService(repos.Messages(), cipher)
	passcodeService := services.NewPasscodeService(repos.Passcodes(), cipher)
	releaser := services.NewReleaser(repos.Users(), repos.Messages(), repos.Passcodes(), cipher, notifier, logger, cfg)
	evaluator := services.NewEvaluator(repos.Users(), repos.Checks(), releaser, logger, cfg)
	cycle := services.NewCycle(checkService, evaluator, logger)

	handler := httpapi.NewHandler(userService, checkService, messageService, passcodeService, cycle, logger, cfg)

	return &App{
		config:  cfg,
		logger:  logger,
		repos:   repos,
		handler: handler,
		cycle:   cycle,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	fiberApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	httpapi.RegisterRoutes(fiberApp, app.handler)

	go func() {
		<-ctx.Done()
		if err := fiberApp.Shutdown(); err != nil {
			app.logger.Error(ctx, "http shutdown error", "err", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)

	if err := fiberApp.Listen(app.config.EndpointAddr); err != nil {
		app.logger.Error(ctx, "http server error", "err", err)
		cancelFunc()
	}
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Conn().Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err)
	}
}

// RunCycleOnce executes a single issue-and-evaluate cycle and exits. Backs
// the cron entry point as an alternative to the HTTP cycle endpoint.
func (app *App) RunCycleOnce(ctx context.Context) *services.Report {
	report := app.cycle.Run(ctx)

	if err := app.repos.Conn().Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err)
	}

	return report
}
