package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/darkroot-games/warband-api/internal/catalog"
	"github.com/darkroot-games/warband-api/internal/orchestrators/customization"
	"github.com/darkroot-games/warband-api/internal/orchestrators/deck"
	"github.com/darkroot-games/warband-api/internal/orchestrators/inventory"
	"github.com/darkroot-games/warband-api/internal/orchestrators/progression"
	"github.com/darkroot-games/warband-api/internal/orchestrators/session"
	"github.com/darkroot-games/warband-api/internal/pkg/clock"
	"github.com/darkroot-games/warband-api/internal/pkg/idgen"
	"github.com/darkroot-games/warband-api/internal/pkg/sessionlock"
	redisclient "github.com/darkroot-games/warband-api/internal/redis"
	deckpresetrepo "github.com/darkroot-games/warband-api/internal/repositories/deck_preset"
	sessionrepo "github.com/darkroot-games/warband-api/internal/repositories/game_session"
)

var grpcPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the Warband API gRPC server with all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides GRPC_PORT)")
}

// engine holds the fully wired session economy services. Handlers pick
// their dependencies off this struct as the API surface grows.
type engine struct {
	Sessions      session.Service
	Decks         deck.Service
	Inventory     inventory.Service
	Customization customization.Service
	Progression   progression.Service
}

func buildEngine(ctx context.Context, cfg *config) (*engine, error) {
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load weapon catalog: %w", err)
	}
	slog.Info("loaded weapon catalog",
		"path", cfg.CatalogPath,
		"definitions", cat.Len())

	client, err := redisclient.NewClient(cfg.RedisAddress, &redisclient.Options{
		PoolSize:        cfg.RedisPoolSize,
		MinIdleConns:    cfg.RedisMinIdleConns,
		ConnMaxIdleTime: cfg.RedisConnMaxIdleTime,
		UseTLS:          cfg.RedisUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddress, err)
	}

	sessionRepo := sessionrepo.NewRedisRepository(client)
	presetRepo := deckpresetrepo.NewRedisRepository(client)

	clk := clock.New()
	locks := sessionlock.New()
	roller := dice.DefaultRoller

	sessions, err := session.NewOrchestrator(&session.Config{
		SessionRepo: sessionRepo,
		PresetRepo:  presetRepo,
		Catalog:     cat,
		IDGenerator: idgen.NewUUID("sess_"),
		CardIDGen:   idgen.NewUUID("card_"),
		DiceRoller:  roller,
		Clock:       clk,
		Locks:       locks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	decks, err := deck.NewOrchestrator(&deck.Config{
		SessionRepo: sessionRepo,
		PresetRepo:  presetRepo,
		Catalog:     cat,
		IDGenerator: idgen.NewUUID("card_"),
		DiceRoller:  roller,
		Clock:       clk,
		Locks:       locks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	inv, err := inventory.NewOrchestrator(&inventory.Config{
		SessionRepo: sessionRepo,
		Catalog:     cat,
		IDGenerator: idgen.NewUUID("item_"),
		Clock:       clk,
		Locks:       locks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory service: %w", err)
	}

	custom, err := customization.NewOrchestrator(&customization.Config{
		PresetRepo:  presetRepo,
		SessionRepo: sessionRepo,
		Catalog:     cat,
		IDGenerator: idgen.NewUUID("preset_"),
		Clock:       clk,
		Locks:       locks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customization service: %w", err)
	}

	prog, err := progression.NewOrchestrator(&progression.Config{
		SessionRepo: sessionRepo,
		Clock:       clk,
		Locks:       locks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create progression service: %w", err)
	}

	return &engine{
		Sessions:      sessions,
		Decks:         decks,
		Inventory:     inv,
		Customization: custom,
		Progression:   prog,
	}, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if grpcPort != 0 {
		cfg.GRPCPort = grpcPort
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("session economy engine ready",
		"sessions", eng.Sessions != nil,
		"decks", eng.Decks != nil,
		"inventory", eng.Inventory != nil,
		"customization", eng.Customization != nil,
		"progression", eng.Progression != nil)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting", "port", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gRPC server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
