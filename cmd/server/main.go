package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptopulse/internal/app"
	"cryptopulse/internal/bot"
	"cryptopulse/internal/config"
	"cryptopulse/internal/dashboard"
	"cryptopulse/internal/handler"
	"cryptopulse/internal/wallet"
	"cryptopulse/pkg/logger"
	"cryptopulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "cryptopulse/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newDashboardFunc       = app.NewDashboard
	startDashboardFunc     = func(d *dashboard.Dashboard, ctx context.Context) { go d.Start(ctx) }
	openThemeStoreFunc     = app.ThemeStore
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           CryptoPulse API
// @version         1.0
// @description     Live crypto market dashboard: ticker, market stats, fear & greed, movers and news.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: tracing.ServiceName})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Theme persistence (Redis when configured)
	themes, closeThemes := openThemeStoreFunc(ctx, cfg)
	defer closeThemes()

	// Dashboard refresh loops (stopped by ctx cancel)
	dash := newDashboardFunc(cfg, tracer)
	startDashboardFunc(dash, ctx)

	chatBot := app.ChatBot(cfg)
	connector := wallet.NewConnector(app.WalletProvider(cfg, tracer))

	// Telegram bot (optional)
	tb, err := startTelegramBotFunc(cfg.TelegramBotToken, dash, chatBot)
	if err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}

	h := newHandlerFunc(tracer, dash, themes, connector, chatBot)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r, cfg.AdminAPIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down server...")

	cancel()
	if tb != nil {
		tb.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
