package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/soltixdb/trendscope/internal/config"
	"github.com/soltixdb/trendscope/internal/export"
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/models"
	"github.com/soltixdb/trendscope/internal/services"
)

// options holds the parsed command line
type options struct {
	configPath string
	input      string
	output     string
	format     string
	query      models.AnalysisQuery
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)

	fs.StringVar(&o.configPath, "config", "", "Path to configuration file (optional)")
	fs.StringVar(&o.input, "input", "", "CSV file to analyse")
	fs.StringVar(&o.output, "output", "", "Output directory (default: stdout for json)")
	fs.StringVar(&o.format, "format", "json", "Output format (json, csv, xlsx, pdf)")
	fs.StringVar(&o.query.TimestampColumn, "timestamp-column", "", "Timestamp column name")
	fs.StringVar(&o.query.ValueColumn, "value-column", "", "Value column name")
	fs.StringVar(&o.query.TimeLayout, "time-layout", "", "Go time layout tried before the built-in ones")
	fs.StringVar(&o.query.Threshold, "threshold", "", `Low value threshold, e.g. "< 20"`)
	fs.StringVar(&o.query.Windows, "windows", "", `Comma separated moving average windows, "none" to disable`)
	fs.StringVar(&o.query.Slope, "slope", "", "Include the slope sequence (true/false)")
	fs.StringVar(&o.query.Parallel, "parallel", "", "Run pipeline stages concurrently (true/false)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.input == "" {
		return o, fmt.Errorf("-input is required")
	}
	if o.format != "" && o.format != string(export.FormatJSON) && o.output == "" {
		return o, fmt.Errorf("-output is required for format %s", o.format)
	}
	return o, nil
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	cfg := config.LoadOrDefault(o.configPath)
	cfg.Logging.OutputPath = "stderr"

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}

	req, err := toRequest(o.query)
	if err != nil {
		return err
	}

	file, err := os.Open(o.input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = file.Close() }()

	svc := services.NewAnalysisService(logger, cfg.Analysis, cfg.Influx, nil, nil)
	resp, err := svc.AnalyzeCSV(ctx, file, req)
	if err != nil {
		return err
	}

	if format == export.FormatJSON {
		w := stdout
		if o.output != "" {
			f, err := createOutput(o.output, o.input, format, "")
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	tables := export.Tables(resp.Result, resp.Series)

	if format == export.FormatCSV {
		for _, t := range tables {
			if err := writeFile(o.output, o.input, format, t.Name, func(w io.Writer) error {
				return export.CSV(w, t)
			}); err != nil {
				return err
			}
		}
		return nil
	}

	return writeFile(o.output, o.input, format, "", func(w io.Writer) error {
		if format == export.FormatXLSX {
			return export.XLSX(w, tables)
		}
		return export.PDF(w, "Series analysis: "+filepath.Base(o.input), tables)
	})
}

func toRequest(q models.AnalysisQuery) (services.AnalysisRequest, error) {
	windows, err := q.ParseWindows()
	if err != nil {
		return services.AnalysisRequest{}, err
	}
	slope, err := models.ParseBool("slope", q.Slope)
	if err != nil {
		return services.AnalysisRequest{}, err
	}
	parallel, err := models.ParseBool("parallel", q.Parallel)
	if err != nil {
		return services.AnalysisRequest{}, err
	}
	return services.AnalysisRequest{
		TimestampColumn: q.TimestampColumn,
		ValueColumn:     q.ValueColumn,
		TimeLayout:      q.TimeLayout,
		Threshold:       q.Threshold,
		Windows:         windows,
		IncludeSlope:    slope,
		Parallel:        parallel,
	}, nil
}

// createOutput creates <dir>/<input base>[_<suffix>].<ext>
func createOutput(dir, input string, format export.Format, suffix string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if suffix != "" {
		name += "_" + suffix
	}
	path := filepath.Join(dir, name+format.Extension())

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func writeFile(dir, input string, format export.Format, suffix string, render func(w io.Writer) error) error {
	f, err := createOutput(dir, input, format, suffix)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
