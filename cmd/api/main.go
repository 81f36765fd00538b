package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/finalyzer/support/backend/internal/config"
	"github.com/finalyzer/support/backend/internal/handler"
	"github.com/finalyzer/support/backend/internal/logging"
	"github.com/finalyzer/support/backend/internal/model/suggestion"
	"github.com/finalyzer/support/backend/internal/model/user"
	"github.com/finalyzer/support/backend/internal/service/ai"
	"github.com/finalyzer/support/backend/internal/service/chat"
	"github.com/finalyzer/support/backend/internal/service/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
	"github.com/finalyzer/support/backend/internal/service/typing"
	"github.com/finalyzer/support/backend/internal/service/webhook"
	"github.com/finalyzer/support/backend/internal/storage"
	"github.com/finalyzer/support/backend/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New(cfg.Log)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file loaded, continuing with system environment variables only")
	}

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to open storage")
	}
	defer store.Close()
	logger.WithFields(logrus.Fields{"driver": cfg.Storage.Driver, "dsn": cfg.Storage.DSN}).Info("storage ready")

	replier := newReplier(ctx, cfg, logger)

	var registrar profile.Registrar
	if cfg.Webhook.SignupEnabled {
		registrar = webhook.NewSignupClient(cfg.Webhook.SignupURL, cfg.Webhook.Timeout, logger.WithField("component", "signup"))
	} else {
		logger.Info("signup webhook disabled, profiles are stored locally only")
	}

	questions, err := suggestion.Load(cfg.Chat.SuggestionsFile)
	if err != nil {
		logger.WithError(err).Fatal("failed to load suggested questions")
	}

	accounts, err := user.Seed(bcrypt.DefaultCost)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed demo accounts")
	}

	pages, err := view.NewPages()
	if err != nil {
		logger.WithError(err).Fatal("failed to parse page templates")
	}

	router := handler.NewRouter(handler.Deps{
		Chat:         chat.NewService(store, replier, logger, cfg.Chat.VisitorTTL, chat.WithReplyTimeout(cfg.Webhook.Timeout)),
		Onboarding:   profile.NewOnboarding(registrar, logger),
		Renderers:    typing.NewRegistry(cfg.Chat.TypingInterval, cfg.Chat.VisitorTTL),
		Users:        user.NewMemoryStore(accounts),
		Suggestions:  suggestion.NewMemoryStore(questions),
		Pages:        pages,
		Logger:       logger,
		CookieSecure: cfg.Server.CookieSecure,
	})

	if err := startServer(ctx, cfg.Server, router, logger); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

// newReplier picks the reply backend. The Ark model is opt-in; any problem
// setting it up falls back to the chat webhook.
func newReplier(ctx context.Context, cfg *config.Config, logger *logrus.Logger) reply.Replier {
	hook := webhook.NewClient(cfg.Webhook.ChatURL, cfg.Webhook.Timeout, logger.WithField("component", "webhook"))

	if cfg.Chat.ReplyBackend != "ark" {
		return hook
	}
	if !cfg.AI.Enabled() {
		logger.Warn("REPLY_BACKEND=ark but Ark credentials are not configured, using webhook")
		return hook
	}

	svc, err := ai.NewService(ctx, cfg.AI, logger.WithField("component", "ark"))
	if err != nil {
		logger.WithError(err).Warn("failed to initialize AI service, using webhook; check the ARK_* environment variables")
		return hook
	}
	logger.Info("AI service initialized successfully")
	return svc
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", serverCfg.Addr).Info("FinAlyzer support backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
