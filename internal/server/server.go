package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workflo/internal/auth"
	"workflo/internal/cache"
	"workflo/internal/config"
	"workflo/internal/handler"
	"workflo/internal/health"
	"workflo/internal/mailer"
	"workflo/internal/migrations"
	"workflo/internal/repository"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *cache.RedisProvider
	Config *config.Config
	logger *zap.Logger
}

func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logger.Info("Connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.MigrateURL(), logger); err != nil {
			return nil, err
		}
	}

	// Redis необязателен: без него приглашения не одноразовые
	var (
		redisProvider *cache.RedisProvider
		ledger        service.RedemptionLedger
	)
	if cfg.RedisURL != "" {
		redisProvider = cache.NewRedisProvider(cfg.RedisURL, logger)
		ledger = cache.NewInviteLedger(redisProvider)
	} else {
		logger.Warn("REDIS_URL is not set, invitation tokens are not single use")
	}

	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
	} else {
		logger.Warn("SMTP_HOST is not set, invitation emails are only logged")
		sender = mailer.NewLogSender(logger)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	signer := auth.NewInviteSigner(cfg.InviteSecret, cfg.InviteTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	contributorRepo := repository.NewContributorRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	guard := service.NewGuard(contributorRepo)
	userService := service.NewUserService(userRepo, tokens, logger)
	boardService := service.NewBoardService(boardRepo, guard, logger)
	contributorService := service.NewContributorService(boardRepo, userRepo, contributorRepo, guard, logger)
	taskService := service.NewTaskService(boardRepo, taskRepo, contributorRepo, guard, logger)
	inviteService := service.NewInvitationService(
		boardRepo, userRepo, contributorRepo, guard,
		signer, sender, ledger, cfg.PublicURL(), logger,
	)

	checker := &health.Checker{DB: db}
	if redisProvider != nil {
		checker.Redis = redisProvider.Client
	}

	r := NewRouter(logger, cfg.AllowedOrigins(), tokens)
	r.Register(Handlers{
		Users:        handler.NewUserHandler(userService, cfg.SessionTTL, !cfg.IsDev()),
		Boards:       handler.NewBoardHandler(boardService),
		Contributors: handler.NewContributorHandler(contributorService),
		Invites:      handler.NewInviteHandler(inviteService),
		Tasks:        handler.NewTaskHandler(taskService),
		Health:       handler.NewHealthHandler(checker),
	})

	return &Server{
		Engine: r.Engine,
		DB:     db,
		Redis:  redisProvider,
		Config: cfg,
		logger: logger,
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.close()

	s.logger.Info("Server exited properly")
	return nil
}

func (s *Server) close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn("Failed to close Redis", zap.Error(err))
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
