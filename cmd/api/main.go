package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/njprem/user_admin_backend/internal/config"
	"github.com/njprem/user_admin_backend/internal/logging"
	"github.com/njprem/user_admin_backend/internal/repository/memory"
	miniostore "github.com/njprem/user_admin_backend/internal/repository/minio"
	"github.com/njprem/user_admin_backend/internal/repository/ports"
	"github.com/njprem/user_admin_backend/internal/repository/postgres"
	s3store "github.com/njprem/user_admin_backend/internal/repository/s3"
	"github.com/njprem/user_admin_backend/internal/service"
	transporthttp "github.com/njprem/user_admin_backend/internal/transport/http"
	"github.com/njprem/user_admin_backend/internal/transport/mail"
	"github.com/njprem/user_admin_backend/internal/util"
)

type repositories struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	resets   ports.PasswordResetRepository
	sessions ports.SessionRepository
	tx       ports.Transactor
	close    func() error
}

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Config{
		Level:        cfg.LogLevel,
		Dev:          cfg.LogDev,
		File:         cfg.LogFile,
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	notifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		return err
	}

	jwtManager := util.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	issuer := service.NewSessionIssuer(jwtManager, repos.sessions)
	authService := service.NewAuthService(
		repos.users, repos.roles, repos.resets, repos.tx,
		issuer, notifier, util.RandomTokenGenerator{}, logger.Named("auth"),
		service.AuthServiceConfig{
			DefaultRole:           cfg.DefaultRole,
			PasswordResetTTL:      time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute,
			RequireStrongPassword: cfg.PasswordRequireStrong,
			FrontendBaseURL:       cfg.FrontendBaseURL,
		},
	)
	userService := service.NewUserService(repos.users, repos.roles, repos.tx, logger.Named("users"))

	routerCfg := transporthttp.RouterConfig{
		AllowOrigins:   cfg.AllowOrigins,
		UsersAdminRole: cfg.UsersAdminRole,
		SwaggerSpec:    "docs/swagger.yaml",
	}
	e := transporthttp.NewRouter(routerCfg, logger.Named("http"))
	transporthttp.RegisterRoutes(e, routerCfg, authService, userService)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver), zap.String("mail", cfg.MailDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:    store.Users(),
			roles:    store.Roles(),
			resets:   store.PasswordResets(),
			sessions: store.Sessions(),
			tx:       store.Transactor(),
			close:    func() error { return nil },
		}, nil
	case config.StorageDriverPostgres:
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if cfg.DatabaseAutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		return postgresRepositories(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func postgresRepositories(db *sqlx.DB) *repositories {
	return &repositories{
		users:    postgres.NewUserRepo(db),
		roles:    postgres.NewRoleRepo(db),
		resets:   postgres.NewPasswordResetRepo(db),
		sessions: postgres.NewSessionRepo(db),
		tx:       postgres.NewTransactor(db),
		close:    db.Close,
	}
}

func newNotifier(ctx context.Context, cfg config.Config, logger *zap.Logger) (ports.Notifier, error) {
	switch cfg.MailDriver {
	case config.MailDriverLog:
		return mail.NewLogNotifier(logger.Named("mail")), nil
	case config.MailDriverSMTP:
		return mail.NewSMTPNotifier(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			UseTLS:   cfg.SMTPUseTLS,
		}), nil
	case config.MailDriverArchive:
		storage, err := newArchiveStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return mail.NewArchiveNotifier(storage, cfg.ArchiveBucket, cfg.SMTPFrom, logger.Named("mail")), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

func newArchiveStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveBackendMinIO:
		client, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		storage := miniostore.NewStorage(client, "")
		if err := storage.EnsureBucket(ctx, cfg.ArchiveBucket); err != nil {
			return nil, err
		}
		return storage, nil
	case config.ArchiveBackendS3:
		opts := s3store.Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}
		client, err := s3store.NewClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s3store.NewStorage(client, opts), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}
