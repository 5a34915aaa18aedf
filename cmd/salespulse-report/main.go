// Command salespulse-report runs every analytics engine over an order
// export and writes the report as JSON, CSV or XLSX.
//
//	salespulse-report -source data/orders.csv -category kurta -format xlsx -out report.xlsx
//	salespulse-report -source s3://exports/2022/orders.csv -start 2022-04-01 -end 2022-04-30
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/ingest"
	"salespulse/internal/services"
	"salespulse/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// options holds the parsed command line
type options struct {
	source   string
	start    string
	end      string
	category string
	region   string
	out      string
	format   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("salespulse-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.source, "source", "", "order export: local CSV/XLSX path or s3://bucket/key (defaults to the configured source)")
	fs.StringVar(&opts.start, "start", "", "first day to include, YYYY-MM-DD (defaults to the earliest order)")
	fs.StringVar(&opts.end, "end", "", "last day to include, YYYY-MM-DD (defaults to the latest order)")
	fs.StringVar(&opts.category, "category", domain.AllValues, "category to report on")
	fs.StringVar(&opts.region, "region", domain.AllValues, "ship state to report on")
	fs.StringVar(&opts.out, "out", "", "output file (json, xlsx) or directory (csv); \"-\" writes json to stdout")
	fs.StringVar(&opts.format, "format", string(exporter.FormatJSON), "output format: json, csv or xlsx")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func (o options) filter() (domain.Filter, error) {
	f := domain.Filter{Category: o.category, Region: o.region}
	var err error
	if o.start != "" {
		if f.StartDate, err = time.Parse(exporter.DateLayout, o.start); err != nil {
			return f, fmt.Errorf("invalid -start %q: %w", o.start, err)
		}
	}
	if o.end != "" {
		if f.EndDate, err = time.Parse(exporter.DateLayout, o.end); err != nil {
			return f, fmt.Errorf("invalid -end %q: %w", o.end, err)
		}
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return f, fmt.Errorf("-end %s is before -start %s", o.end, o.start)
	}
	return f, nil
}

func defaultOut(format exporter.Format) string {
	if format == exporter.FormatCSV {
		return "salespulse_report"
	}
	return "salespulse_report." + string(format)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	// stdout carries the report paths, so logs go to stderr
	logger := infrastructure.NewLogger(stderr, cfg.Logging)

	sourceCfg := cfg.Source
	if opts.source != "" {
		if sourceCfg, err = ingest.WithLocation(cfg.Source, opts.source); err != nil {
			return err
		}
	}
	source, err := ingest.NewSource(ctx, sourceCfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := services.NewAnalyticsService(source, logger).Report(ctx, filter)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Report computed",
		slog.String("source", source.ID()),
		slog.Int("lines", report.LineCount),
		slog.Int("rows_read", report.Normalize.RowsRead),
		slog.Int("skipped_dates", report.Normalize.SkippedDates),
		slog.Duration("duration", time.Since(start)))

	if opts.out == "-" {
		if format != exporter.FormatJSON {
			return fmt.Errorf("-out - is only supported with -format json")
		}
		return exporter.WriteJSON(stdout, report)
	}

	out := opts.out
	if out == "" {
		out = defaultOut(format)
	}
	paths, err := exporter.NewReportExporter(logger).Export(ctx, report, format, out)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return nil
}
