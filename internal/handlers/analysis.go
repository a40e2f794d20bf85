package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/trendscope/internal/analytics/pipeline"
	"github.com/soltixdb/trendscope/internal/export"
	"github.com/soltixdb/trendscope/internal/metrics"
	"github.com/soltixdb/trendscope/internal/models"
	"github.com/soltixdb/trendscope/internal/services"
)

// Analyze handles CSV analysis requests
// POST /v1/analysis
//
// The body is a CSV document with a header row. Query parameters override
// the configured columns, threshold, moving average windows and output format.
func (h *Handler) Analyze(c *fiber.Ctx) error {
	q, req, format, err := parseAnalysisQuery(c)
	if err != nil {
		return err
	}

	body := c.Body()
	if len(body) == 0 {
		return services.NewServiceError(services.CodeInvalidRequest, "request body must be a CSV document")
	}

	resp, err := h.analysisService.AnalyzeCSV(c.UserContext(), bytes.NewReader(body), req)
	if err != nil {
		return err
	}

	return h.render(c, resp, format, q.Set)
}

// AnalyzeInflux handles analysis of a series stored in InfluxDB
// GET /v1/analysis/influx
func (h *Handler) AnalyzeInflux(c *fiber.Ctx) error {
	q, req, format, err := parseAnalysisQuery(c)
	if err != nil {
		return err
	}

	resp, err := h.analysisService.AnalyzeInflux(c.UserContext(), services.InfluxRequest{
		AnalysisRequest: req,
		Bucket:          q.Bucket,
		Measurement:     q.Measurement,
		Field:           q.Field,
		Range:           q.Range,
	})
	if err != nil {
		return err
	}

	return h.render(c, resp, format, q.Set)
}

func parseAnalysisQuery(c *fiber.Ctx) (models.AnalysisQuery, services.AnalysisRequest, export.Format, error) {
	var q models.AnalysisQuery
	if err := c.QueryParser(&q); err != nil {
		return q, services.AnalysisRequest{}, "", invalidRequest(err)
	}

	format, err := export.ParseFormat(q.Format)
	if err != nil {
		return q, services.AnalysisRequest{}, "", invalidRequest(err)
	}

	windows, err := q.ParseWindows()
	if err != nil {
		return q, services.AnalysisRequest{}, "", invalidRequest(err)
	}

	slope, err := models.ParseBool("slope", q.Slope)
	if err != nil {
		return q, services.AnalysisRequest{}, "", invalidRequest(err)
	}

	parallel, err := models.ParseBool("parallel", q.Parallel)
	if err != nil {
		return q, services.AnalysisRequest{}, "", invalidRequest(err)
	}

	return q, services.AnalysisRequest{
		TimestampColumn: q.TimestampColumn,
		ValueColumn:     q.ValueColumn,
		TimeLayout:      q.TimeLayout,
		Threshold:       q.Threshold,
		Windows:         windows,
		IncludeSlope:    slope,
		Parallel:        parallel,
	}, format, nil
}

// render writes resp as JSON or as a document in the requested format
func (h *Handler) render(c *fiber.Ctx, resp *services.AnalysisResponse, format export.Format, set string) error {
	if format == export.FormatJSON {
		return c.JSON(resp)
	}

	tables := export.Tables(resp.Result, resp.Series)
	filename := "analysis-" + resp.RunID + format.Extension()

	var buf bytes.Buffer
	var err error
	switch format {
	case export.FormatCSV:
		if set == "" {
			set = pipeline.SetLowValues
		}
		table, ok := export.FindTable(tables, set)
		if !ok {
			return invalidRequest(fmt.Errorf("unknown result set %q", set))
		}
		filename = fmt.Sprintf("analysis-%s-%s%s", resp.RunID, set, format.Extension())
		err = export.CSV(&buf, table)
	case export.FormatXLSX:
		err = export.XLSX(&buf, tables)
	case export.FormatPDF:
		err = export.PDF(&buf, "Series analysis "+resp.RunID, tables)
	}
	if err != nil {
		metrics.IncExport(string(format), metrics.ResultError)
		h.logger.WithContext(c.UserContext()).Error("Export failed", "format", format, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render "+string(format))
	}
	metrics.IncExport(string(format), metrics.ResultSuccess)

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set("X-Run-ID", resp.RunID)
	return c.Send(buf.Bytes())
}

func invalidRequest(err error) error {
	return &services.ServiceError{
		Code:    services.CodeInvalidRequest,
		Message: err.Error(),
		Err:     err,
	}
}
