package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/adapter/gateway"
	httpAdapter "github.com/iho/walletcore/internal/adapter/http"
	"github.com/iho/walletcore/internal/adapter/http/handler"
	"github.com/iho/walletcore/internal/adapter/http/middleware"
	"github.com/iho/walletcore/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/walletcore/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletcore/internal/adapter/repository/redis"
	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/config"
	"github.com/iho/walletcore/internal/infrastructure/logger"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
	"github.com/iho/walletcore/internal/infrastructure/notify"
	"github.com/iho/walletcore/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Optional archive database
	var archiver usecase.JournalArchiver
	var archivePool = optionalArchivePool(ctx, cfg, appLogger)
	if archivePool != nil {
		defer archivePool.Close()
		archiver = postgresRepo.NewJournalArchiver(archivePool, postgresRepo.NewRetrier(appLogger))
	}

	// Optional Redis
	redisClient := optionalRedisClient(ctx, cfg, appLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories
	wallets := memory.NewWalletRepository()
	journal := memory.NewTransactionRepository()
	transfers := memory.NewTransferRepository()
	approvals := memory.NewApprovalRepository()
	conversions := memory.NewConversionRepository()
	rules := memory.NewRuleRepository()
	scamList := domain.NewScamList(cfg.ScamAddresses...)
	idGen := postgresRepo.NewULIDGenerator()

	// Gateways
	var sender usecase.NetworkSender
	var confirmer usecase.PaymentConfirmer
	if cfg.PayoutProviderURL != "" {
		sender = gateway.NewNetworkSender(cfg.PayoutProviderURL, cfg.PayoutProviderKey, appLogger)
		confirmer = gateway.NewPaymentConfirmer(cfg.PayoutProviderURL, cfg.PayoutProviderKey, appLogger)
	} else {
		appLogger.Warn().Msg("no payout provider configured, using local gateway")
		sender = gateway.NewLocalNetworkSender(appLogger)
		confirmer = gateway.NewLocalPaymentConfirmer()
	}
	geo := gateway.NewGeoResolver(cfg.BlockedIPRanges, appLogger)

	// Notifications
	var sink notify.Sink = notify.NewLogSink(appLogger)
	if redisClient != nil {
		sink = notify.NewRedisSink(redisClient, cfg.NotificationChannel)
	}
	dispatcher := notify.NewDispatcher(notify.Config{
		Sink:       sink,
		Logger:     appLogger,
		BufferSize: cfg.NotificationBuffer,
	})
	go dispatcher.Start(ctx)

	// Use cases
	exchangeUC := usecase.NewExchangeUseCase(conversions, idGen, cfg.RateRefreshInterval, appLogger, m)
	if redisClient != nil {
		exchangeUC.UseRateStore(redisRepo.NewRateStore(redisClient))
		if err := exchangeUC.RestoreRates(ctx); err != nil {
			appLogger.Warn().Err(err).Msg("rate snapshot restore failed")
		}
	}
	ledgerUC := usecase.NewLedgerUseCase(wallets, journal, exchangeUC, exchangeUC, archiver, idGen, appLogger, m)
	fraudUC := usecase.NewFraudUseCase(journal, scamList, geo, exchangeUC, appLogger, m)
	approvalUC := usecase.NewApprovalUseCase(
		ledgerUC, fraudUC, transfers, approvals, rules, journal,
		exchangeUC, scamList, sender, dispatcher, idGen,
		usecase.ApprovalConfig{
			InstantCeilingUSD: parseAmount(cfg.InstantCeilingUSD),
			DefaultCeilingUSD: parseAmount(cfg.DefaultCeilingUSD),
			PendingTTL:        cfg.PendingTransferTTL,
		},
		appLogger, m,
	)
	paymentUC := usecase.NewPaymentUseCase(ledgerUC, exchangeUC, approvalUC, confirmer, dispatcher, appLogger, m)

	// Background workers
	go exchangeUC.Run(ctx)
	go approvalUC.Run(ctx, cfg.ExpirySweepEvery)

	// Router
	routerCfg := httpAdapter.RouterConfig{
		PaymentHandler:  handler.NewPaymentHandler(paymentUC),
		WalletHandler:   handler.NewWalletHandler(ledgerUC, exchangeUC, approvalUC, paymentUC),
		ApprovalHandler: handler.NewApprovalHandler(approvalUC),
		ExchangeHandler: handler.NewExchangeHandler(exchangeUC),
		HealthHandler:   handler.NewHealthHandler(archivePool, redisClient),
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:          appLogger,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}
	router := httpAdapter.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	appLogger.Info().Msg("server stopped")
}

// parseAmount parses a configured USD amount; malformed values fall back to
// zero, which keeps the platform defaults.
func parseAmount(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
