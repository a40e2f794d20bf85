package handlers

import (
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger          *logging.Logger
	analysisService *services.AnalysisService
	checks          map[string]func() error
}

// New creates a new handler instance. checks are named readiness probes
// reported by the health endpoint.
func New(logger *logging.Logger, analysisService *services.AnalysisService, checks map[string]func() error) *Handler {
	return &Handler{
		logger:          logger,
		analysisService: analysisService,
		checks:          checks,
	}
}
