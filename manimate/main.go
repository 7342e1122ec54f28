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

	"manimate/manimate/config"
	"manimate/manimate/controllers"
	"manimate/manimate/routes"
	"manimate/manimate/services/llm"
	"manimate/manimate/services/oauth"
	"manimate/manimate/services/prompts"
	"manimate/manimate/services/token"
	"manimate/manimate/sources/psql"
	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/sources/storage"
	"manimate/manimate/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(cfg.LogDir, cfg.LogConsole); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	catalogue, err := prompts.Load()
	if err != nil {
		logging.ErrorLogger.Error("prompt catalogue error", zap.Error(err))
		os.Exit(1)
	}
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		logging.ErrorLogger.Error("llm provider error", zap.Error(err))
		os.Exit(1)
	}

	var archive controllers.ScriptArchiver
	if cfg.ArchiveEnabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		archive = storage.NewScriptArchive(minioClient, cfg.MinIOBucket)
	}

	verifiers := []oauth.Verifier{
		oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackURL("google")),
	}
	if cfg.GitHubEnabled() {
		verifiers = append(verifiers,
			oauth.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.OAuthCallbackURL("github")))
	}
	registry := oauth.NewRegistry(verifiers...)

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	userDAO := dao.NewUserDAO(db.DB)
	sessionDAO := dao.NewSessionDAO(db.DB)
	chatDAO := dao.NewChatMessageDAO(db.DB)

	handler := routes.NewRouter(routes.Handlers{
		Auth:             controllers.NewAuthController(userDAO, issuer, registry),
		User:             controllers.NewUserController(userDAO),
		Chat:             controllers.NewChatController(sessionDAO, chatDAO, provider, catalogue, cfg, archive),
		Health:           controllers.NewHealthController(db),
		Issuer:           issuer,
		OAuthFailureURL:  cfg.OAuthFailureURL,
		RequestTimeout:   cfg.RequestTimeout,
		WSOriginPatterns: cfg.WSOriginPatterns,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("llm_provider", cfg.LLMProvider),
			zap.Strings("oauth_providers", registry.Providers()),
			zap.Bool("archive", archive != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
		return
	}
	logging.AppLogger.Info("server shutdown complete")
}
