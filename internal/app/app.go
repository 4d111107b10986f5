package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/anvlasov/bug-report-service/internal/auth"
	"github.com/anvlasov/bug-report-service/internal/config"
	"github.com/anvlasov/bug-report-service/internal/httpserver"
	"github.com/anvlasov/bug-report-service/internal/migrations"
	"github.com/anvlasov/bug-report-service/internal/notify"
	"github.com/anvlasov/bug-report-service/internal/repository"
	"github.com/anvlasov/bug-report-service/internal/service"
	"github.com/anvlasov/bug-report-service/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App owns the process-wide dependencies; nothing here is a package-level
// singleton.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	httpServer *httpserver.Server
	db         *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	if err := migrations.Run(ctx, cfg.DatabaseURL, logger); err != nil {
		db.Close()
		return nil, err
	}

	repo := repository.New(db)
	dispatcher := notify.NewDispatcher(notify.NewMailer(cfg.SMTPAddr, cfg.SMTPFrom), logger, cfg.NotifyTimeout)
	svc := service.New(repo, dispatcher, logger)
	gate := auth.NewGate(svc, auth.NewSessionStore(cfg.SessionTTL))
	router := httpserver.NewRouter(logger, svc, gate)
	server := httpserver.New(cfg.HTTPPort, logger, router)

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: server,
		db:         db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			return err
		}

		return <-errCh
	case err := <-errCh:
		return err
	}
}
