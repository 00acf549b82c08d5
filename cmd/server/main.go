package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uav-gateway/internal/command"
	"uav-gateway/internal/geocode"
	"uav-gateway/internal/media"
	"uav-gateway/internal/platform/config"
	"uav-gateway/internal/platform/logger"
	"uav-gateway/internal/platform/metrics"
	"uav-gateway/internal/relay"
	"uav-gateway/internal/reports"
	"uav-gateway/internal/telemetry"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)
	met := metrics.New()

	videoRoot, err := media.NewRoot(config.GetEnv("VIDEO_ROOT", "data/videos"))
	if err != nil {
		log.Error("video root", "error", err)
		os.Exit(1)
	}
	frameRoot, err := media.NewRoot(config.GetEnv("FRAME_ROOT", "data/frames"))
	if err != nil {
		log.Error("frame root", "error", err)
		os.Exit(1)
	}

	store, err := reports.OpenStore(config.GetEnv("DB_PATH", "data/gateway.db"))
	if err != nil {
		log.Error("opening reports store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	places, err := geocode.OpenPlaces(config.GetEnv("PLACES_DB_PATH", "data/places.db"))
	if err != nil {
		log.Error("opening places store", "error", err)
		os.Exit(1)
	}
	defer places.Close()

	geocodeTimeout := time.Duration(config.GetEnvInt("GEOCODE_TIMEOUT_MS", 2000)) * time.Millisecond
	resolver := geocode.NewResolver(config.GetEnv("GEOCODE_URL", ""), geocodeTimeout, places, log)

	cache := telemetry.NewCache()
	engine := relay.NewEngine(relay.Config{
		Device:    config.GetEnv("CAPTURE_DEVICE", "/dev/video0"),
		FrameRate: config.GetEnvInt("CAPTURE_FPS", 15),
		Width:     config.GetEnvInt("CAPTURE_WIDTH", 640),
		MaxBuffer: config.GetEnvInt("RELAY_MAX_BUFFER", relay.DefaultMaxBuffer),
	}, log, met)

	telemetryH := telemetry.NewHandler(cache, log, met)
	mediaH := media.NewHandler(videoRoot, frameRoot, log)
	geocodeH := geocode.NewHandler(resolver, log)
	reportsH := reports.NewHandler(store, log)
	commandH := command.NewHandler(command.NewMailbox(), log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Handle("/metrics", met.Handler())

	r.Route("/telemetry", func(r chi.Router) {
		r.Post("/aerial", telemetryH.Ingest(telemetry.SlotAerial))
		r.Post("/ground", telemetryH.Ingest(telemetry.SlotGround))
		r.Get("/aerial", telemetryH.Latest(telemetry.SlotAerial))
		r.Get("/ground", telemetryH.Latest(telemetry.SlotGround))
		r.Get("/distance", telemetryH.Distance)
	})

	r.Get("/videos/{container}/{name}", mediaH.ServeVideo)
	r.Get("/frames/{container}/{name}", mediaH.ServeFrame)
	r.Get("/stream", engine.Stream)
	r.Get("/location/{lat}/{lon}", geocodeH.Reverse)
	reportsH.Routes(r)
	r.Post("/command", commandH.Set)
	r.Get("/command", commandH.Take)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
