package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ogurasousui/jobswap-backend/internal/adapters/events"
	"github.com/ogurasousui/jobswap-backend/internal/adapters/http/handler"
	"github.com/ogurasousui/jobswap-backend/internal/adapters/repository/postgres"
	"github.com/ogurasousui/jobswap-backend/internal/core/chat"
	"github.com/ogurasousui/jobswap-backend/internal/core/company"
	"github.com/ogurasousui/jobswap-backend/internal/core/employee"
	"github.com/ogurasousui/jobswap-backend/internal/core/exchange"
	"github.com/ogurasousui/jobswap-backend/internal/core/identity"
	"github.com/ogurasousui/jobswap-backend/internal/core/notification"
	"github.com/ogurasousui/jobswap-backend/internal/core/position"
	"github.com/ogurasousui/jobswap-backend/internal/platform/auth"
	"github.com/ogurasousui/jobswap-backend/internal/platform/config"
	pg "github.com/ogurasousui/jobswap-backend/internal/platform/db/postgres"
	"github.com/ogurasousui/jobswap-backend/internal/platform/logging"
	"github.com/ogurasousui/jobswap-backend/internal/platform/server"
)

const connectTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbPool, err := pg.NewPoolWithRetry(ctx, cfg.Database, connectTimeout, logger)
	if err != nil {
		logger.Fatal("failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	tx := pg.NewTransactionManager(dbPool)
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)

	var publisher exchange.EventPublisher
	if cfg.Events.NATSURL != "" {
		client, err := events.ConnectWithRetry(ctx, cfg.Events.NATSURL, connectTimeout)
		if err != nil {
			logger.Fatal("failed to connect to nats", zap.Error(err))
		}
		defer client.Close()
		publisher = events.NewPublisher(client, logger)
	}

	identityRepo := postgres.NewIdentityRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	positionRepo := postgres.NewPositionRepository(dbPool)
	exchangeRepo := postgres.NewExchangeRepository(dbPool)
	chatRepo := postgres.NewChatRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)

	notificationSvc := notification.NewService(notificationRepo, nil, tx)
	chatSvc := chat.NewService(chatRepo, notificationSvc, nil, tx)
	identitySvc := identity.NewService(identityRepo, tokens, nil, tx)
	companySvc := company.NewService(companyRepo, notificationSvc, nil, tx)
	employeeSvc := employee.NewService(employeeRepo, notificationSvc, nil, tx)
	positionSvc := position.NewService(positionRepo, nil, tx)
	exchangeSvc := exchange.NewService(exchangeRepo, notificationSvc, chatSvc, publisher, nil, tx, logger)

	h := handler.New(handler.Services{
		Identity:      identitySvc,
		Companies:     companySvc,
		Employees:     employeeSvc,
		Positions:     positionSvc,
		Exchanges:     exchangeSvc,
		Chats:         chatSvc,
		Notifications: notificationSvc,
	}, tokens, cfg.Server.AllowedOrigin, logger)

	srv := server.New(cfg.Server.ListenAddr, h.Router())

	logger.Info("http server listening", zap.String("addr", cfg.Server.ListenAddr))

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
