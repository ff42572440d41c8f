// Package api provides the HTTP API for the AxPersona pipeline service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/axwise-ai/axpersona/pkg/config"
	"github.com/axwise-ai/axpersona/pkg/database"
	"github.com/axwise-ai/axpersona/pkg/export"
	"github.com/axwise-ai/axpersona/pkg/questionnaire"
	"github.com/axwise-ai/axpersona/pkg/registry"
	"github.com/axwise-ai/axpersona/pkg/simulation"

	analysispkg "github.com/axwise-ai/axpersona/pkg/analysis"
)

// Server is the HTTP API server.
type Server struct {
	cfg      *config.Config
	dbClient *database.Client // nil when storage is degraded
	engine   *gin.Engine

	questionnaire *questionnaire.Builder
	simulation    *simulation.Orchestrator
	analysis      *analysispkg.Runner
	assembler     *export.Assembler
	registry      *registry.Registry
}

// NewServer wires the API server and registers its routes.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	qb *questionnaire.Builder,
	sim *simulation.Orchestrator,
	runner *analysispkg.Runner,
	assembler *export.Assembler,
	reg *registry.Registry,
) *Server {
	s := &Server{
		cfg:           cfg,
		dbClient:      dbClient,
		questionnaire: qb,
		simulation:    sim,
		analysis:      runner,
		assembler:     assembler,
		registry:      reg,
	}
	s.engine = s.buildEngine()
	return s
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts the HTTP listener.
func (s *Server) Run() error {
	return s.engine.Run(":" + s.cfg.HTTPPort)
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.healthHandler)

	routes := r.Group("/")
	if s.cfg.EnableClerkValidation {
		routes.Use(clerkAuth(s.cfg.ClerkJWTKey))
	}

	routes.POST("/questionnaires", s.questionnaireHandler)
	routes.POST("/simulations", s.simulationHandler)
	routes.POST("/analysis", s.analysisHandler)
	routes.POST("/exports/persona-dataset", s.exportHandler)
	routes.POST("/pipeline/run-async", s.createPipelineJobHandler)
	routes.GET("/pipeline/jobs/:id", s.getPipelineJobHandler)
	routes.GET("/pipeline/runs", s.listPipelineRunsHandler)
	routes.GET("/pipeline/runs/:id", s.getPipelineRunDetailHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

// requestLogger emits one structured log line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logRequest(c, time.Since(start))
	}
}
