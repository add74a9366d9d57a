// Package main provides the gambit server binary. It loads boards, enemy
// templates, and battle scripts, wires the encounter manager, and serves
// battles over websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/config"
	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
	"github.com/cory-johannsen/gambit/internal/game/encounter"
	"github.com/cory-johannsen/gambit/internal/gameserver"
	"github.com/cory-johannsen/gambit/internal/observability"
	"github.com/cory-johannsen/gambit/internal/scripting"
	"github.com/cory-johannsen/gambit/internal/server"
	"github.com/cory-johannsen/gambit/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	noDB := flag.Bool("no-db", false, "run without PostgreSQL; profiles and battles go unrecorded")
	heartbeat := flag.Duration("heartbeat", 30*time.Second, "interval between server vitals log lines")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting gambit server",
		zap.String("addr", cfg.Server.Addr()),
	)

	// Load boards.
	boardStart := time.Now()
	boardList, err := board.LoadBoardsFromDir(cfg.Content.BoardsDir)
	if err != nil {
		logger.Fatal("loading boards", zap.Error(err))
	}
	boards := make(map[string]*board.Board, len(boardList))
	for _, b := range boardList {
		boards[b.ID] = b
	}
	logger.Info("boards loaded",
		zap.Int("count", len(boards)),
		zap.Duration("elapsed", time.Since(boardStart)),
	)

	// Load enemy templates.
	templates, err := actor.LoadTemplates(cfg.Content.EnemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	logger.Info("enemy templates loaded", zap.Int("count", len(templates)))

	// Every spawn must resolve before the first battle starts; a dangling
	// reference is a content bug, not a runtime condition.
	for _, b := range boardList {
		for i, sp := range b.Spawns {
			if _, ok := templates[sp.Template]; !ok {
				logger.Fatal("spawn references unknown enemy template",
					zap.String("board", b.ID),
					zap.Int("spawn", i),
					zap.String("template", sp.Template),
				)
			}
		}
	}

	// Connect to PostgreSQL for profile and battle persistence.
	var (
		pool        *postgres.Pool
		profileRepo *postgres.ProfileRepository
		battleRepo  *postgres.BattleRepository
		traceRepo   *postgres.TraceRepository
	)
	if *noDB {
		logger.Warn("running without database; profiles and battles will not be recorded")
	} else {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		profileRepo = postgres.NewProfileRepository(pool.DB())
		battleRepo = postgres.NewBattleRepository(pool.DB())
		if cfg.Game.TraceDecisions {
			traceRepo = postgres.NewTraceRepository(pool.DB())
			logger.Info("decision tracing enabled")
		}
	}

	// Initialise the scripting engine. Shared scripts load into the global
	// VM; a subdirectory named after a board overrides it for that board.
	scriptMgr := scripting.NewManager(logger)
	defer scriptMgr.Close()
	if info, statErr := os.Stat(cfg.Content.ScriptsDir); statErr == nil && info.IsDir() {
		scriptStart := time.Now()
		if err := scriptMgr.LoadGlobal(cfg.Content.ScriptsDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading battle scripts",
				zap.String("dir", cfg.Content.ScriptsDir), zap.Error(err))
		}
		for id := range boards {
			dir := filepath.Join(cfg.Content.ScriptsDir, id)
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				continue
			}
			if err := scriptMgr.LoadBoard(id, dir, cfg.Scripting.InstructionLimit); err != nil {
				logger.Fatal("loading board scripts",
					zap.String("board", id), zap.Error(err))
			}
			logger.Info("board scripts loaded",
				zap.String("board", id), zap.String("dir", dir))
		}
		logger.Info("scripting engine initialized",
			zap.Duration("elapsed", time.Since(scriptStart)))
	} else {
		logger.Warn("scripts dir not found, scripting disabled",
			zap.String("dir", cfg.Content.ScriptsDir))
	}

	hub := gameserver.NewHub(logger)
	encounters := encounter.NewManager(
		boards, templates,
		encounter.Config{PlayerHP: cfg.Game.PlayerHP, PlayerAttack: cfg.Game.PlayerAttack},
		gameserver.NewScriptHooks(scriptMgr),
		logger,
	)

	// Wire script callbacks. Scripts see live battle state through the
	// manager and reach pilots through the hub.
	scriptMgr.GetEnemy = func(uid string) *scripting.EnemyInfo {
		en, ok := encounters.FindEnemy(uid)
		if !ok {
			return nil
		}
		return &scripting.EnemyInfo{
			UID:       en.UID,
			Name:      en.Name,
			Archetype: en.Archetype.String(),
			HP:        en.HP,
			MaxHP:     en.MaxHP,
			Attack:    en.Attack,
			X:         en.Pos.X,
			Y:         en.Pos.Y,
		}
	}
	scriptMgr.GetBoard = func(boardID string) *scripting.BoardInfo {
		b, ok := boards[boardID]
		if !ok {
			return nil
		}
		return &scripting.BoardInfo{ID: b.ID, Name: b.Name, Width: b.Width(), Height: b.Height()}
	}
	scriptMgr.Broadcast = hub.Broadcast

	handler := gameserver.NewHandler(encounters, hub, profileRepo, battleRepo, traceRepo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.Handle)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Wire lifecycle.
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("websocket server listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	lifecycle.Add("heartbeat", gameserver.NewHeartbeat(hub, encounters, *heartbeat, logger))

	if pool != nil {
		done := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					case <-done:
						return nil
					}
				}
			},
			StopFn: func() {
				close(done)
				pool.Close()
			},
		})
	}

	logger.Info("gambit server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Strings("boards", encounters.BoardIDs()),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
