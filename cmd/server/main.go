package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/api"
	"github.com/example/trademind/internal/config"
	"github.com/example/trademind/internal/crypto"
	"github.com/example/trademind/internal/logger"
	"github.com/example/trademind/internal/middleware"
	"github.com/example/trademind/internal/session"
	"github.com/example/trademind/internal/staticserver"
	"github.com/example/trademind/internal/validation"
)

func main() {
	// Load .env file. In production, environment variables should be set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zapLogger.Info("Application configuration loaded successfully.", zap.String("authBackend", appConfig.AuthBackend))

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	app, err := buildApplication(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize application services", zap.Error(err))
	}
	defer app.Close()

	cookies, err := newCookieCodec(appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize session cookies", zap.Error(err))
	}

	if err := validation.RegisterBindings(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to register request validators", zap.Error(err))
	}

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	router.LoadHTMLGlob(filepath.Join(appConfig.TemplateDir, "*.html"))

	api.SetupRoutes(router, api.Dependencies{
		Auth:          app.Auth,
		Profiles:      app.Profiles,
		Verifier:      app.Provider,
		Cookies:       cookies,
		Static:        staticserver.New(appConfig.StaticRoot, zapLogger),
		RedirectDelay: appConfig.RedirectDelay,
		TickInterval:  appConfig.TickInterval,

		GoogleSignIn:   googleSignInMode(appConfig),
		GoogleClientID: appConfig.GoogleClientID,
	}, zapLogger)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer, stopServing := newHTTPServer(serverAddr, router)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	loginURL := fmt.Sprintf("http://localhost:%s%s", appConfig.Port, staticserver.IndexPath)
	zapLogger.Info("TradeMind server running", zap.String("address", serverAddr), zap.String("url", loginURL), zap.String("ginMode", gin.Mode()))
	if appConfig.OpenBrowser {
		if err := openBrowser(loginURL); err != nil {
			zapLogger.Warn("Could not auto-open browser. Please manually open the URL.", zap.String("url", loginURL), zap.Error(err))
		} else {
			zapLogger.Info("Opened browser", zap.String("url", loginURL))
		}
	}

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Shutting down TradeMind server...", zap.String("signal", sig.String()))

	shutdownServer(httpServer, stopServing, shutdownTimeout, zapLogger)
	zapLogger.Info("Server closed successfully.")
}

// newCookieCodec builds the session cookie codec. Without SESSION_KEY a random key is used,
// so sessions do not survive a restart.
func newCookieCodec(cfg *config.Config, logger *zap.Logger) (*session.CookieCodec, error) {
	var key []byte
	var err error
	if cfg.SessionKey == "" {
		logger.Warn("SESSION_KEY is not set, using an ephemeral key")
		key, err = crypto.GenerateKey()
	} else {
		key, err = crypto.KeyFromBase64(cfg.SessionKey)
	}
	if err != nil {
		return nil, err
	}

	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}
	return session.NewCookieCodec(sealer, strings.ToLower(cfg.GinMode) == "release"), nil
}
