// AxPersona server - runs the synthetic-research pipeline API and its
// background pipeline jobs in a single process.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/axwise-ai/axpersona/pkg/api"
	"github.com/axwise-ai/axpersona/pkg/cache"
	"github.com/axwise-ai/axpersona/pkg/config"
	"github.com/axwise-ai/axpersona/pkg/database"
	"github.com/axwise-ai/axpersona/pkg/export"
	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/pipeline"
	"github.com/axwise-ai/axpersona/pkg/questionnaire"
	"github.com/axwise-ai/axpersona/pkg/registry"
	"github.com/axwise-ai/axpersona/pkg/services"
	"github.com/axwise-ai/axpersona/pkg/simulation"
	"github.com/axwise-ai/axpersona/pkg/version"

	analysispkg "github.com/axwise-ai/axpersona/pkg/analysis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	slog.Info("Starting AxPersona",
		"version", version.Full(),
		"http_port", cfg.HTTPPort,
		"model", cfg.GeminiModel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage is optional: with no reachable database the service degrades
	// to in-memory operation and historical reads return not-found.
	var dbClient *database.Client
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	dbClient, err = database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Warn("Database unavailable, running in degraded mode", "error", err)
		dbClient = nil
	} else {
		defer func() {
			if err := dbClient.Close(); err != nil {
				slog.Error("Error closing database client", "error", err)
			}
		}()
		slog.Info("Connected to PostgreSQL database")
	}

	gateway, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create LLM gateway: %v", err)
	}

	var simService *services.SimulationService
	var analysisService *services.AnalysisService
	var runService *services.RunService
	if dbClient != nil {
		simService = services.NewSimulationService(dbClient.Gorm())
		analysisService = services.NewAnalysisService(dbClient.Gorm())
		runService = services.NewRunService(dbClient.Gorm())
	} else {
		simService = services.NewSimulationService(nil)
		analysisService = services.NewAnalysisService(nil)
		runService = services.NewRunService(nil)
	}

	interviewCache := cache.NewInterviewCache()
	builder := questionnaire.NewBuilder(gateway)
	simOrch := simulation.NewOrchestrator(gateway, interviewCache, simService, cfg.MaxConcurrentInterviews)
	analyzer := analysispkg.NewAnalyzer(gateway)
	runner := analysispkg.NewRunner(analyzer, analysisService, simOrch, "gemini", cfg.GeminiModel)
	assembler := export.NewAssembler(analysisService, simOrch)

	orchestrator := pipeline.New(builder, simOrch, runner, assembler, cfg.SimulationDefaults())
	jobRegistry := registry.New(ctx, runService, orchestrator)
	defer jobRegistry.Shutdown()

	server := api.NewServer(cfg, dbClient, builder, simOrch, runner, assembler, jobRegistry)

	slog.Info("HTTP server listening", "port", cfg.HTTPPort)
	if err := server.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
