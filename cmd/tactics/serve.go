package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/IsoTactics/internal/config"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/grpc/matchserver"
	"github.com/mitchelldurbincs/IsoTactics/internal/monitoring"
	"github.com/mitchelldurbincs/IsoTactics/internal/transport/websocket"
)

const matchTickInterval = 100 * time.Millisecond

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the match server (gRPC plus websocket spectators)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "gRPC host; empty uses config"},
			&cli.IntFlag{Name: "port", Value: -1, Usage: "gRPC port; -1 uses config"},
			&cli.IntFlag{Name: "max-matches", Value: -1, Usage: "concurrent match limit; -1 uses config"},
			&cli.BoolFlag{Name: "enable-reflection", Usage: "enable gRPC reflection"},
			&cli.BoolFlag{Name: "watch-config", Usage: "reload the config file when it changes"},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := initConfig(cmd)
	if err != nil {
		return err
	}

	grpcCfg := cfg.Server.GRPCServer
	host := cmd.String("host")
	if host == "" {
		host = grpcCfg.Host
	}
	port := int(cmd.Int("port"))
	if port == -1 {
		port = grpcCfg.Port
	}
	maxMatches := int(cmd.Int("max-matches"))
	if maxMatches == -1 {
		maxMatches = grpcCfg.MaxMatches
	}
	enableReflection := cmd.Bool("enable-reflection") || grpcCfg.EnableReflection

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger

	// Spectator hub
	wsCfg := cfg.Server.WebSocket
	hub := websocket.NewHub(websocket.HubConfig{
		PingInterval:    time.Duration(wsCfg.PingInterval) * time.Second,
		WriteTimeout:    time.Duration(wsCfg.WriteTimeout) * time.Second,
		SendBufferSize:  wsCfg.SendBufferSize,
		ReadBufferSize:  wsCfg.ReadBufferSize,
		WriteBufferSize: wsCfg.WriteBufferSize,
		Logger:          logger,
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	mcfg := matchserver.ManagerConfig{
		MaxMatches:      maxMatches,
		DefaultWidth:    cfg.Game.Map.Width,
		DefaultHeight:   cfg.Game.Map.Height,
		IdleTimeout:     grpcCfg.IdleTimeoutDuration(),
		CleanupInterval: grpcCfg.CleanupIntervalDuration(),
		TickInterval:    matchTickInterval,
		Rules: func(w, h int) game.Rules {
			return config.RulesFromConfig(config.Get(), w, h)
		},
		Logger: logger,
	}
	if wsCfg.Enabled {
		mcfg.Broadcaster = hub
	}
	matches := matchserver.NewMatchManager(mcfg)
	defer matches.Close()

	monitor := monitoring.New(monitoring.Options{}, logger)
	monitor.RegisterProbe("active_matches", matches.ActiveMatches)
	monitor.RegisterProbe("spectators", hub.Spectators)
	monitor.Start()
	defer monitor.Stop()

	if cmd.Bool("watch-config") {
		config.WatchConfig(func() {
			zerolog.SetGlobalLevel(parseLevel(config.Get().Server.LogLevel))
			log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded")
		})
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			matchserver.LoggingInterceptor(logger),
			matchserver.RecoveryInterceptor(logger),
		),
	)
	matchserver.RegisterMatchServiceServer(grpcServer, matchserver.NewServer(matches, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().
			Str("address", lis.Addr().String()).
			Int("max_matches", maxMatches).
			Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve: %w", err)
		}
	}()

	var httpServer *http.Server
	if wsCfg.Enabled {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", wsCfg.Host, wsCfg.Port),
			Handler:           hub.Handler(matches),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Str("address", httpServer.Addr).Msg("Websocket spectator endpoint listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("websocket serve: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed")
		grpcServer.Stop()
		return err
	}

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(matchserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Give ongoing requests time to complete
	time.Sleep(time.Duration(grpcCfg.GracefulShutdownDelay) * time.Second)

	log.Info().Msg("Gracefully stopping gRPC server")
	grpcServer.GracefulStop()

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Websocket endpoint shutdown")
		}
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
