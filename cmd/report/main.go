// Command report generates SaaS metrics reports from local transaction CSV
// files, one report per input, written into an output directory. A directory
// argument stands for the CSV files directly inside it.
//
//	report -out DIR [-format html|pdf|xlsx|csv|json] [-anchor now|latest] [-date YYYY-MM-DD] FILE.csv|DIR...
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
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"saaspulse/internal/app"
	"saaspulse/internal/config"
	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/files"
	"saaspulse/internal/infrastructure"
	"saaspulse/internal/services"
	"saaspulse/internal/validation"
	"saaspulse/pkg/contracts"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	outDir   string
	format   string
	anchor   string
	date     string
	logLevel string
	version  bool
	files    []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.outDir, "out", "", "output directory for generated reports (required)")
	fs.StringVar(&opts.format, "format", "html", "report format: html, pdf, xlsx, csv or json")
	fs.StringVar(&opts.anchor, "anchor", "", "analysis date anchor when -date is not given: now or latest (defaults to the configured anchor)")
	fs.StringVar(&opts.date, "date", "", "explicit analysis date, YYYY-MM-DD; the current period ends at the start of this day, so charges dated on it are excluded")
	fs.StringVar(&opts.logLevel, "log-level", "error", "log level: debug, info, warn or error")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: report -out DIR [flags] FILE.csv|DIR...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.version {
		return opts, nil
	}

	opts.files = fs.Args()
	opts.anchor = strings.ToLower(strings.TrimSpace(opts.anchor))
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))

	if opts.outDir == "" {
		fs.Usage()
		return nil, errors.New("-out is required")
	}
	if len(opts.files) == 0 {
		fs.Usage()
		return nil, errors.New("at least one input file is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	inputs, err := files.NewDiscovery("").ExpandInputs(opts.files)
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "report: %v, using defaults\n", err)
		cfg = config.Default()
	}
	logger := infrastructure.NewLogger(stderr, opts.logLevel)

	svc, err := app.BuildReportService(cfg, nil, logger)
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitFailed
	}

	validator := validation.NewFileValidator(logger, cfg.Report.MaxUploadBytes)
	if err := validator.ValidateOutputDirectory(opts.outDir); err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitFailed
	}

	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("Generating reports"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	reportOpts := services.ReportOptions{
		Format:       opts.format,
		Anchor:       opts.anchor,
		AnalysisDate: opts.date,
	}

	var written []string
	failed := 0
	for _, file := range inputs {
		if ctx.Err() != nil {
			break
		}

		out, err := generate(ctx, svc, file, opts.outDir, reportOpts)
		_ = bar.Add(1)
		if err != nil {
			failed++
			logger.Error("Report generation failed",
				slog.String("file", file),
				slog.String("error", err.Error()))
			written = append(written, fmt.Sprintf("FAILED\t%s\t%s", file, describe(err)))
			continue
		}
		written = append(written, out)
	}
	_ = bar.Finish()

	for _, line := range written {
		fmt.Fprintln(stdout, line)
	}

	if ctx.Err() != nil {
		fmt.Fprintf(stderr, "report: interrupted\n")
		return exitFailed
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "report: %d of %d inputs failed\n", failed, len(inputs))
		return exitFailed
	}
	return exitOK
}

// generate writes the report for one input file and returns a result line:
// outcome, summary state, input and output path separated by tabs.
func generate(ctx context.Context, svc *services.ReportService, file, outDir string, opts services.ReportOptions) (string, error) {
	rep, err := svc.AnalyzeFile(ctx, file, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, rep.Filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := svc.Render(ctx, f, rep); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return fmt.Sprintf("%s\t%s\t%s\t%s",
		strings.ToUpper(rep.Payload.Outcome.Kind()), rep.Payload.SummaryState, file, path), nil
}

// describe flattens an API error and its details into one line
func describe(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Details != nil {
		return fmt.Sprintf("%s: %v", apiErr.Message, apiErr.Details)
	}
	return err.Error()
}
