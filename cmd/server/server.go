package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greyhelm/vtt-api/internal/config"
	"github.com/greyhelm/vtt-api/internal/handlers/httpapi"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/attack"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/orchestrators/game"
	"github.com/greyhelm/vtt-api/internal/orchestrators/spellcasting"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	"github.com/greyhelm/vtt-api/internal/realtime"
	redisclient "github.com/greyhelm/vtt-api/internal/redis"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/catalog"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/repositories/tokens"
)

var httpPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Start the vtt-api HTTP server with all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&httpPort, "port", 0, "HTTP server port (overrides HTTP_PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if httpPort != 0 {
		cfg.HTTPPort = httpPort
	}

	setupLogging(cfg.LogLevel)

	handler, err := buildHandler(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler.Routes(),
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed, forcing close", "error", err)
			return srv.Close()
		}

		slog.Info("server stopped gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func buildHandler(cfg *config.Config) (*httpapi.Handler, error) {
	client, err := redisclient.NewClient(cfg.RedisAddr, &redisclient.Options{
		PoolSize:        cfg.RedisPoolSize,
		MinIdleConns:    cfg.RedisMinIdleConns,
		ConnMaxIdleTime: cfg.RedisConnMaxIdle,
		MaxRetries:      cfg.RedisMaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	gameRepo, err := games.NewRedis(&games.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create games repository: %w", err)
	}
	actorRepo, err := actors.NewRedis(&actors.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create actors repository: %w", err)
	}
	combatRepo, err := combats.NewRedis(&combats.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create combats repository: %w", err)
	}
	conditionRepo, err := conditions.NewRedis(&conditions.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create conditions repository: %w", err)
	}
	catalogRepo, err := catalog.NewRedis(&catalog.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog repository: %w", err)
	}
	logRepo, err := gamelogs.NewRedis(&gamelogs.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create game logs repository: %w", err)
	}
	tokenRepo, err := tokens.NewRedis(&tokens.RedisConfig{Client: client})
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens repository: %w", err)
	}

	hub := realtime.NewHub(nil)
	clk := clock.New()
	roller := dice.NewRoller()

	combatSvc, err := combat.NewOrchestrator(&combat.Config{
		GameRepo:      gameRepo,
		ActorRepo:     actorRepo,
		CombatRepo:    combatRepo,
		ConditionRepo: conditionRepo,
		LogRepo:       logRepo,
		Broadcaster:   hub,
		IDGenerator:   idgen.NewUUID("combat_"),
		Clock:         clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create combat orchestrator: %w", err)
	}

	actorSvc, err := actor.NewOrchestrator(&actor.Config{
		GameRepo:      gameRepo,
		ActorRepo:     actorRepo,
		ConditionRepo: conditionRepo,
		LogRepo:       logRepo,
		Gate:          combatSvc,
		Broadcaster:   hub,
		Roller:        roller,
		IDGenerator:   idgen.NewUUID("actor_"),
		Clock:         clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create actor orchestrator: %w", err)
	}

	attackSvc, err := attack.NewOrchestrator(&attack.Config{
		CatalogRepo: catalogRepo,
		CombatRepo:  combatRepo,
		LogRepo:     logRepo,
		ActorSvc:    actorSvc,
		Gate:        combatSvc,
		Broadcaster: hub,
		Roller:      roller,
		IDGenerator: idgen.NewUUID("attack_"),
		Clock:       clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attack orchestrator: %w", err)
	}

	spellSvc, err := spellcasting.NewOrchestrator(&spellcasting.Config{
		CatalogRepo: catalogRepo,
		ActorRepo:   actorRepo,
		CombatRepo:  combatRepo,
		LogRepo:     logRepo,
		ActorSvc:    actorSvc,
		Gate:        combatSvc,
		Broadcaster: hub,
		Roller:      roller,
		IDGenerator: idgen.NewUUID("spell_"),
		Clock:       clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create spellcasting orchestrator: %w", err)
	}

	gameSvc, err := game.NewOrchestrator(&game.Config{
		GameRepo:    gameRepo,
		TokenRepo:   tokenRepo,
		LogRepo:     logRepo,
		Broadcaster: hub,
		IDGenerator: idgen.NewUUID("game_"),
		Clock:       clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game orchestrator: %w", err)
	}

	return httpapi.NewHandler(&httpapi.Config{
		GameService:   gameSvc,
		CombatService: combatSvc,
		ActorService:  actorSvc,
		AttackService: attackSvc,
		SpellService:  spellSvc,
		Hub:           hub,
	})
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
