package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chatwire/internal/core/services"
	"chatwire/internal/infrastructure/monitoring"
	"chatwire/internal/infrastructure/relay"
	"chatwire/pkg/config"
	"chatwire/pkg/logger"

	"github.com/pion/webrtc/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/chatwire/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// ICE servers from config, with a public STUN fallback; clients receive
	// these on a successful authenticate.
	var iceServers []webrtc.ICEServer
	for _, s := range cfg.WebRTC.ICEServers {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}
	if len(iceServers) == 0 {
		iceServers = []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		}
	}

	relayICE := make([]relay.ICEServer, 0, len(iceServers))
	for _, s := range iceServers {
		entry := relay.ICEServer{URLs: s.URLs, Username: s.Username}
		if cred, ok := s.Credential.(string); ok {
			entry.Credential = cred
		}
		relayICE = append(relayICE, entry)
	}

	collector := monitoring.NewRelayCollector(prometheus.DefaultRegisterer)

	server := relay.NewServer(authService, collector, log, relay.Options{
		PingInterval: cfg.Relay.PingInterval,
		PongTimeout:  cfg.Relay.PongTimeout,
		WriteTimeout: cfg.Relay.WriteTimeout,
		SendBuffer:   cfg.Relay.SendBufferSize,
		ICEServers:   relayICE,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWebSocket)
	mux.HandleFunc("/health", server.HealthCheck)
	if cfg.Monitoring.PrometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:    cfg.Relay.Address,
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting chatwire relay on %s", cfg.Relay.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Relay server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Relay.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during relay shutdown", "error", err)
		srv.Close()
	}
	log.Info("Relay stopped")
}
