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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FredrikM97/grocery-scan-card/config"
	httpDelivery "github.com/FredrikM97/grocery-scan-card/internal/delivery/http"
	"github.com/FredrikM97/grocery-scan-card/internal/i18n"
	"github.com/FredrikM97/grocery-scan-card/internal/infrastructure/cache"
	"github.com/FredrikM97/grocery-scan-card/internal/infrastructure/hass"
	"github.com/FredrikM97/grocery-scan-card/internal/infrastructure/history"
	"github.com/FredrikM97/grocery-scan-card/internal/infrastructure/media"
	"github.com/FredrikM97/grocery-scan-card/internal/infrastructure/openfoodfacts"
	"github.com/FredrikM97/grocery-scan-card/internal/usecase"
)

// application bundles the wired components that need explicit teardown.
type application struct {
	router  *gin.Engine
	history *history.Store
	session *usecase.ScanSession
}

func (a *application) close() {
	a.session.Close()
	if err := a.history.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close history store: %v\n", err)
	}
}

// buildApplication wires config through infrastructure, usecases and
// delivery.
func buildApplication(cfg *config.Config, log zerolog.Logger) (*application, error) {
	// Local usage history backing the suggestion ranking
	usageStore, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history store at %s: %w", cfg.History.Path, err)
	}

	// Infrastructure
	productCache := cache.NewMemoryCache()
	offClient := openfoodfacts.NewClient(openfoodfacts.Config{
		BaseURL:    cfg.Lookup.BaseURL,
		Timeout:    cfg.Lookup.Timeout,
		RatePerMin: float64(cfg.Lookup.RatePerMin),
		RateBurst:  cfg.Lookup.RateBurst,
	}, log)
	hassClient := hass.NewClient(hass.Config{
		BaseURL: cfg.Hass.BaseURL,
		Token:   cfg.Hass.Token,
	}, log)

	// Usecases
	lookupService := usecase.NewLookupService(productCache, offClient, usageStore,
		usecase.LookupServiceConfig{
			CacheTTL:       cfg.Lookup.CacheTTL,
			CacheEnabled:   cfg.Lookup.CacheEnabled,
			MaxSuggestions: cfg.History.MaxSuggestions,
		}, log)

	listService := usecase.NewListService(hassClient, log)

	// The server process has no local video hardware; detections arrive
	// through the injection endpoint, and the adapter reports a classified
	// camera error if capture is ever requested.
	detector := usecase.NewDetectorAdapter(media.NoDeviceProvider{}, nil, nil,
		usecase.DetectorAdapterConfig{
			FrameInterval:  cfg.Scanner.FrameInterval,
			DecodeInterval: cfg.Scanner.DecodeInterval,
		}, log)

	session, err := usecase.NewScanSession(detector, lookupService, listService,
		usecase.ScanSessionConfig{
			ListID:        cfg.List.EntityID,
			BrandRequired: cfg.List.BrandRequired,
			AutoAdd:       cfg.List.AutoAdd,
			CameraEnabled: cfg.Scanner.CameraEnabled,
		}, usecase.SessionCallbacks{}, log)
	if err != nil {
		usageStore.Close()
		return nil, fmt.Errorf("create scan session: %w", err)
	}

	// Delivery
	handler := httpDelivery.NewHandler(session, listService, lookupService,
		i18n.New(cfg.Server.Locale), httpDelivery.HandlerConfig{
			ListID:        cfg.List.EntityID,
			ShowCompleted: cfg.List.ShowCompleted,
		}, log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	return &application{
		router:  router,
		history: usageStore,
		session: session,
	}, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Server.Environment)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("list_entity", cfg.List.EntityID).
		Msg("starting grocery-scan-card v1.0.0")

	app, err := buildApplication(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer app.close()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: app.router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

func newLogger(environment string) zerolog.Logger {
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
