package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/soltixdb/trendscope/internal/analytics"
	"github.com/soltixdb/trendscope/internal/analytics/loader"
	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
	"github.com/soltixdb/trendscope/internal/cache"
	"github.com/soltixdb/trendscope/internal/config"
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/metrics"
	"github.com/soltixdb/trendscope/internal/utils"
)

// Series sources reported in responses and metrics
const (
	SourceCSV    = "csv"
	SourceInflux = "influx"
)

// SeriesSource loads a series from an external store
type SeriesSource interface {
	Load(ctx context.Context, q loader.InfluxQuery) (analytics.Series, error)
}

// AnalysisService loads a series, runs the pipeline over it and caches the
// result under the series content hash.
type AnalysisService struct {
	logger   *logging.Logger
	defaults config.AnalysisConfig
	influx   config.InfluxConfig
	source   SeriesSource
	store    *cache.ResultStore
	flights  singleflight.Group
}

// NewAnalysisService creates a new AnalysisService. source may be nil when no
// external series store is configured; store may be nil to disable caching.
func NewAnalysisService(
	logger *logging.Logger,
	defaults config.AnalysisConfig,
	influx config.InfluxConfig,
	source SeriesSource,
	store *cache.ResultStore,
) *AnalysisService {
	if store == nil {
		store = cache.NewResultStore(nil, 0, false, logger)
	}
	return &AnalysisService{
		logger:   logger,
		defaults: defaults,
		influx:   influx,
		source:   source,
		store:    store,
	}
}

// AnalysisRequest overrides the configured analysis defaults. Zero fields
// keep the default. Windows == nil keeps the default windows, an empty
// non-nil slice disables moving averages.
type AnalysisRequest struct {
	TimestampColumn string
	ValueColumn     string
	TimeLayout      string
	Threshold       string
	Windows         []int
	IncludeSlope    *bool
	Parallel        *bool
}

// InfluxRequest selects a series from the configured InfluxDB bucket
type InfluxRequest struct {
	AnalysisRequest
	Bucket      string
	Measurement string
	Field       string
	Range       string
}

// AnalysisResponse is the outcome of one analysis run
type AnalysisResponse struct {
	RunID    string           `json:"run_id"`
	Source   string           `json:"source"`
	CacheKey string           `json:"cache_key"`
	Cached   bool             `json:"cached"`
	TookMs   int64            `json:"took_ms"`
	Result   *pipeline.Result `json:"result"`

	// Series is the analysed input, kept for renderers that need it
	Series analytics.Series `json:"-"`
}

// AnalyzeCSV loads a CSV stream and analyses it
func (s *AnalysisService) AnalyzeCSV(ctx context.Context, r io.Reader, req AnalysisRequest) (*AnalysisResponse, error) {
	start := time.Now()

	cfg, err := s.pipelineConfig(req)
	if err != nil {
		metrics.ObserveAnalysis(SourceCSV, metrics.ResultError, time.Since(start))
		return nil, err
	}

	opts := loader.CSVOptions{
		Columns: loader.Columns{
			Timestamp: firstNonEmpty(req.TimestampColumn, s.defaults.TimestampColumn),
			Value:     firstNonEmpty(req.ValueColumn, s.defaults.ValueColumn),
		},
		TimeLayout: firstNonEmpty(req.TimeLayout, s.defaults.TimeLayout),
		Location:   s.defaults.Location(),
	}

	series, err := loader.LoadCSV(r, opts)
	if err != nil {
		metrics.ObserveAnalysis(SourceCSV, metrics.ResultError, time.Since(start))
		return nil, classify(err, CodeInvalidRequest)
	}

	return s.analyze(ctx, SourceCSV, series, cfg, start)
}

// AnalyzeInflux reads a series from InfluxDB and analyses it
func (s *AnalysisService) AnalyzeInflux(ctx context.Context, req InfluxRequest) (*AnalysisResponse, error) {
	start := time.Now()

	if s.source == nil {
		return nil, NewServiceError(CodeSourceNotConfigured, "influx source is not enabled")
	}

	cfg, err := s.pipelineConfig(req.AnalysisRequest)
	if err != nil {
		metrics.ObserveAnalysis(SourceInflux, metrics.ResultError, time.Since(start))
		return nil, err
	}

	q := loader.InfluxQuery{
		Bucket:      firstNonEmpty(req.Bucket, s.influx.Bucket),
		Measurement: firstNonEmpty(req.Measurement, s.influx.Measurement),
		Field:       firstNonEmpty(req.Field, s.influx.Field),
		Range:       firstNonEmpty(req.Range, s.influx.Range),
	}
	if err := q.Validate(); err != nil {
		metrics.ObserveAnalysis(SourceInflux, metrics.ResultError, time.Since(start))
		return nil, &ServiceError{Code: CodeInvalidRequest, Message: err.Error(), Err: err}
	}

	loadCtx, cancel := context.WithTimeout(ctx, utils.SourceQueryTimeout)
	defer cancel()

	series, err := s.source.Load(loadCtx, q)
	if err != nil {
		metrics.ObserveAnalysis(SourceInflux, metrics.ResultError, time.Since(start))
		s.logger.WithContext(ctx).Error("Influx load failed",
			"bucket", q.Bucket,
			"measurement", q.Measurement,
			"field", q.Field,
			"error", err,
		)
		return nil, classifySourceError(err)
	}

	return s.analyze(ctx, SourceInflux, series, cfg, start)
}

// AnalyzeSeries runs the pipeline over an already loaded series
func (s *AnalysisService) AnalyzeSeries(ctx context.Context, series analytics.Series, req AnalysisRequest) (*AnalysisResponse, error) {
	start := time.Now()
	cfg, err := s.pipelineConfig(req)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, "series", series, cfg, start)
}

func (s *AnalysisService) analyze(ctx context.Context, source string, series analytics.Series, cfg pipeline.Config, start time.Time) (*AnalysisResponse, error) {
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	logger := s.logger.WithContext(ctx)

	key := cache.Key(series, cfg.Fingerprint())
	resp := &AnalysisResponse{
		RunID:    runID,
		Source:   source,
		CacheKey: key,
		Series:   series,
	}

	if result, ok := s.store.Lookup(ctx, key); ok {
		metrics.IncCacheLookup(true)
		resp.Cached = true
		resp.Result = result
		resp.TookMs = time.Since(start).Milliseconds()
		metrics.ObserveAnalysis(source, metrics.ResultSuccess, time.Since(start))
		logger.Debug("Analysis served from cache", "key", key, "samples", len(series))
		return resp, nil
	}
	metrics.IncCacheLookup(false)

	if err := ctx.Err(); err != nil {
		metrics.ObserveAnalysis(source, metrics.ResultError, time.Since(start))
		return nil, classify(err, CodeAnalysisFailed)
	}

	// Identical concurrent requests share one run. The shared run is detached
	// from the first caller's cancellation.
	v, err, shared := s.flights.Do(key, func() (interface{}, error) {
		runCtx := context.WithoutCancel(ctx)
		result, err := pipeline.Run(runCtx, series, cfg)
		if err != nil {
			return nil, err
		}
		s.store.Store(runCtx, key, result)
		return result, nil
	})
	if err != nil {
		metrics.ObserveAnalysis(source, metrics.ResultError, time.Since(start))
		logger.Warn("Analysis failed", "samples", len(series), "error", err)
		return nil, classify(err, CodeAnalysisFailed)
	}

	result := v.(*pipeline.Result)
	resp.Result = result
	resp.TookMs = time.Since(start).Milliseconds()

	sizes := make(map[string]int, len(pipeline.SetNames))
	for name, table := range result.Sets() {
		sizes[name] = table.Len()
	}
	metrics.ObserveSeries(len(series), sizes)
	metrics.ObserveAnalysis(source, metrics.ResultSuccess, time.Since(start))

	logger.Info("Analysis completed",
		"source", source,
		"samples", len(series),
		"peaks", len(result.Peaks),
		"lows", len(result.Lows),
		"low_values", len(result.LowValues),
		"accelerating_decline", len(result.AcceleratingDecline),
		"shared", shared,
		"took_ms", resp.TookMs,
	)

	return resp, nil
}

// pipelineConfig merges req over the configured defaults
func (s *AnalysisService) pipelineConfig(req AnalysisRequest) (pipeline.Config, error) {
	analysis := s.defaults
	if req.Threshold != "" {
		analysis.Threshold = req.Threshold
	}
	if req.Windows != nil {
		analysis.MovingAverageWindows = req.Windows
	}
	if req.IncludeSlope != nil {
		analysis.IncludeSlope = *req.IncludeSlope
	}
	if req.Parallel != nil {
		analysis.Parallel = *req.Parallel
	}

	cfg, err := analysis.PipelineConfig()
	if err != nil {
		return pipeline.Config{}, &ServiceError{
			Code:    CodeInvalidPredicate,
			Message: fmt.Sprintf("invalid threshold %q: %v", analysis.Threshold, err),
			Details: map[string]interface{}{"threshold": analysis.Threshold},
			Err:     err,
		}
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
