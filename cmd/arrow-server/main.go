package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/VanDung-dev/hierachain-frame/api"
	"github.com/VanDung-dev/hierachain-frame/config"
	"github.com/VanDung-dev/hierachain-frame/logging"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLogger := logging.NewLogger("info", false)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Pretty)

	registry := prometheus.NewRegistry()
	metrics := api.NewMetrics("hierachain_frame", registry)

	handler := api.NewArrowHandler(
		api.WithMetrics(metrics),
		api.WithLogger(logger),
		api.WithMaxConcurrent(cfg.MaxConcurrent),
	)

	auth := api.NewAuthenticator(api.AuthConfig{Enabled: cfg.AuthEnabled, Token: cfg.AuthToken})
	if cfg.AuthEnabled && os.Getenv("HIE_AUTH_TOKEN") == "" {
		// generated token must reach the operator
		logger.Warn().Str("token", cfg.AuthToken).Msg("auth enabled without HIE_AUTH_TOKEN, generated one")
	}

	server := api.NewArrowServer(handler, auth, logger)
	if err := server.StartAsync(cfg.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start arrow server")
	}

	var zmqServer *api.ZmqServer
	if cfg.ZmqEndpoint != "" {
		zmqServer = api.NewZmqServer(handler, auth, logger)
		if err := zmqServer.Start(cfg.ZmqEndpoint); err != nil {
			logger.Fatal().Err(err).Msg("failed to start zmq server")
		}
	}

	var grpcServer *api.GRPCServer
	if cfg.GRPCAddr != "" {
		grpcServer = api.NewGRPCServer(handler, auth, logger)
		if err := grpcServer.StartAsync(cfg.GRPCAddr); err != nil {
			logger.Fatal().Err(err).Msg("failed to start grpc server")
		}
	}

	var metricsServer *api.MetricsServer
	if cfg.MetricsAddr != "" {
		metricsServer = api.NewMetricsServer(cfg.MetricsAddr, registry)
		metricsServer.StartAsync(func(err error) {
			logger.Error().Err(err).Msg("metrics server failed")
		})
		logger.Info().Str("address", cfg.MetricsAddr).Msg("metrics server listening")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	server.Stop()
	if zmqServer != nil {
		zmqServer.Stop()
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Warn().Err(err).Msg("metrics server stop")
		}
	}
	logger.Info().Msg("server stopped")
}
