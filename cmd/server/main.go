package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apexquest/apexquest/config"
	"github.com/apexquest/apexquest/internal/agent"
	"github.com/apexquest/apexquest/internal/ai"
	"github.com/apexquest/apexquest/internal/api"
	"github.com/apexquest/apexquest/internal/api/handler"
	"github.com/apexquest/apexquest/internal/auth"
	"github.com/apexquest/apexquest/internal/realtime"
	"github.com/apexquest/apexquest/internal/repository"
	"github.com/apexquest/apexquest/internal/service"
	"github.com/apexquest/apexquest/pkg/database"
	"github.com/apexquest/apexquest/pkg/logger"
	"github.com/apexquest/apexquest/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			log.Fatal("init sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		log.Fatal("init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}
	rdb := database.InitRedis(cfg)
	defer rdb.Close()

	gin.SetMode(cfg.Server.Mode)

	users := repository.NewUserRepository(db)
	channels := repository.NewChannelRepository(db)
	posts := repository.NewPostRepository(db)
	replies := repository.NewReplyRepository(db)
	likes := repository.NewLikeRepository(db)
	flags := repository.NewFlagRepository(db)
	warnings := repository.NewWarningRepository(db)
	bans := repository.NewBanRepository(db)
	notifications := repository.NewNotificationRepository(db)
	requests := repository.NewChannelRequestRepository(db)
	usage := repository.NewAgentUsageRepository(db)

	hub := realtime.NewHub(log)
	hubStop := make(chan struct{})
	go hub.Run(hubStop)

	notifier := service.NewNotificationService(notifications, service.NewUnreadCache(rdb), hub)
	announcer := service.NewAnnouncer(notifier, 0)
	stopAnnouncer := announcer.Start(4)

	activityLog := agent.NewActivityLog()
	reportStore := agent.NewReportStore()
	var authenticator agent.Authenticator
	if cfg.Agents.Mode == "oauth" {
		authenticator = agent.NewOAuthAuthenticator(&cfg.Agents, activityLog, log)
	} else {
		authenticator, err = agent.NewFakeAuthenticator(&cfg.Agents, activityLog, log)
		if err != nil {
			log.Fatal("init fake authenticator", zap.Error(err))
		}
	}

	gemini, err := ai.NewGeminiClient(ctx, &cfg.Gemini, log)
	if err != nil {
		log.Fatal("init gemini client", zap.Error(err))
	}
	defer gemini.Close()

	userSvc := service.NewUserService(users, channels, bans, cfg.Auth.AdminEmail, cfg.Auth.ModeratorEmail)
	channelSvc := service.NewChannelService(channels)
	postSvc := service.NewPostService(db, posts, replies, likes, flags, users, bans, hub)
	staffSvc := service.NewStaffService(db, users, channels, posts, replies, flags, warnings, bans, notifier, announcer, authenticator)
	requestSvc := service.NewChannelRequestService(db, requests, channels, notifier)
	agentSvc := service.NewAgentService(usage, users, channels, posts, replies, warnings, gemini)
	moderationSvc := service.NewModerationService(posts, staffSvc, gemini, authenticator, reportStore, activityLog)

	var verifier auth.Verifier
	if cfg.Auth.Issuer != "" {
		verifier, err = auth.NewOIDCVerifier(ctx, &cfg.Auth)
		if err != nil {
			log.Fatal("init oidc verifier", zap.Error(err))
		}
	} else {
		log.Warn("auth.issuer not set, using static verifier; do not run this in production")
		verifier = &auth.StaticVerifier{Tokens: map[string]*auth.IdentityClaims{}}
	}
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	h := handler.New(userSvc, channelSvc, postSvc, notifier, staffSvc, requestSvc, agentSvc, moderationSvc, sessions, verifier, hub)
	router := api.NewRouter(h, sessions, cfg.Sentry.DSN != "")

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := stopAnnouncer(shutdownCtx); err != nil {
		log.Error("announcer shutdown", zap.Error(err))
	}
	close(hubStop)
	log.Info("bye")
}
