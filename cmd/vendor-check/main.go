package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/monishjocata/Vendor-Check/internal/catalog"
	"github.com/monishjocata/Vendor-Check/internal/config"
	"github.com/monishjocata/Vendor-Check/internal/extractor"
	"github.com/monishjocata/Vendor-Check/internal/heuristics"
	"github.com/monishjocata/Vendor-Check/internal/logging"
	"github.com/monishjocata/Vendor-Check/internal/model"
	"github.com/monishjocata/Vendor-Check/internal/reporter"
	"github.com/monishjocata/Vendor-Check/internal/scanner"
	"github.com/monishjocata/Vendor-Check/internal/walker"
)

var (
	srcPath     string
	reportFmt   string
	outputFile  string
	configPath  string
	excludes    []string
	extensions  []string
	disabled    []string
	workers     int
	split       bool
	minSeverity string
	failOn      string
	debug       bool
)

var errThreshold = errors.New("defects at or above the fail-on severity were found")

var rootCmd = &cobra.Command{
	Use:   "vendor-check",
	Short: "A heuristic scanner for common code defects",
	Long: `vendor-check scans source files for a fixed catalog of defect patterns:
security vulnerabilities, risky dependencies, runtime exceptions, logic
errors, performance issues and style problems.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runAnalysis(cmd.Context(), cfg)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List every defect the scanner can report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sc, err := buildScanner(cfg)
		if err != nil {
			return err
		}
		reporter.NewCatalogPrinter(cmd.OutOrStdout()).Print(sc.Catalog().All())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file (default: .vendor-check.yml when present)")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&srcPath, "src", "s", ".", "Path to source code to scan")
	rootCmd.Flags().StringVarP(&reportFmt, "format", "f", "console", "Report format (console, json, sarif)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "Glob patterns to exclude from scan")
	rootCmd.Flags().StringSliceVar(&extensions, "ext", nil, "File extensions to scan")
	rootCmd.Flags().StringSliceVarP(&disabled, "disable", "d", nil, "Defect ids to skip")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 10, "Number of files scanned concurrently")
	rootCmd.Flags().BoolVar(&split, "split", true, "Scan each top-level Python function or class as its own snippet")
	rootCmd.Flags().StringVar(&minSeverity, "min-severity", "info", "Lowest severity to report (info, warning, critical)")
	rootCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when a defect at or above this severity is found")

	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errThreshold) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig merges the config file and environment with the flags the user
// actually set.
func loadConfig(cmd *cobra.Command) (config.RuntimeConfig, error) {
	flags := cmd.Flags()
	over := config.Overrides{}
	if flags.Changed("src") {
		over.Source = srcPath
	}
	if flags.Changed("format") {
		over.Format = reportFmt
	}
	if flags.Changed("out") {
		over.Output = outputFile
	}
	if flags.Changed("exclude") {
		over.Excludes = excludes
	}
	if flags.Changed("ext") {
		over.Extensions = extensions
	}
	if flags.Changed("disable") {
		over.Disabled = disabled
	}
	if flags.Changed("workers") {
		over.Workers = workers
		over.WorkersSet = true
	}
	if flags.Changed("split") {
		over.Split = &split
	}
	if flags.Changed("min-severity") {
		over.MinSeverity = minSeverity
	}
	if flags.Changed("fail-on") {
		over.FailOn = failOn
	}
	if flags.Changed("debug") {
		over.Debug = &debug
	}

	cfg, err := config.Loader{ConfigPath: configPath}.Load(over)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Init(cfg.Debug); err != nil {
		return cfg, fmt.Errorf("init logging: %w", err)
	}
	return cfg, nil
}

// buildScanner registers the builtin catalog, then the custom defects from
// cfg, then one matcher per enabled id.
func buildScanner(cfg config.RuntimeConfig) (*scanner.Scanner, error) {
	cat, err := catalog.Builtin()
	if err != nil {
		return nil, err
	}

	var custom []model.Matcher
	for _, d := range cfg.Custom {
		if err := cat.Register(d.Definition()); err != nil {
			return nil, fmt.Errorf("custom defect: %w", err)
		}
		if d.Regex != "" {
			p, err := heuristics.NewPattern(d.ID, d.Regex)
			if err != nil {
				return nil, err
			}
			custom = append(custom, p)
			continue
		}
		custom = append(custom, heuristics.Contains{ID: d.ID, Needles: d.Contains})
	}

	skip := make(map[string]struct{}, len(cfg.Disabled))
	var unknown error
	for _, id := range cfg.Disabled {
		if _, err := cat.Get(id); err != nil {
			unknown = multierr.Append(unknown, err)
			continue
		}
		skip[id] = struct{}{}
	}
	if unknown != nil {
		return nil, fmt.Errorf("disable: %w", unknown)
	}

	sc := scanner.New(cat, scanner.WithLogger(logging.Logger))
	for _, m := range append(heuristics.Builtin(), custom...) {
		if _, off := skip[m.DefectID()]; off {
			continue
		}
		if err := sc.Register(m); err != nil {
			return nil, fmt.Errorf("register matcher: %w", err)
		}
	}
	return sc, nil
}

// snippetProcessor extracts every snippet of a file and scans it. Snippets
// that are not valid text are logged and skipped.
func snippetProcessor(mgr *extractor.Manager, sc *scanner.Scanner) walker.Processor {
	return func(path string) ([]model.ScanResult, error) {
		snippets, err := mgr.Extract(path)
		if err != nil {
			return nil, err
		}
		results := make([]model.ScanResult, 0, len(snippets))
		for _, sn := range snippets {
			res, err := sc.ScanSnippet(sn)
			if err != nil {
				var inputErr *model.InputError
				if errors.As(err, &inputErr) {
					logging.Logger.Warnw("skipping snippet", "snippet", sn.ID, "reason", inputErr.Reason)
					continue
				}
				return nil, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

func runAnalysis(ctx context.Context, cfg config.RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(cfg.Source); os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", cfg.Source)
	}

	sc, err := buildScanner(cfg)
	if err != nil {
		return err
	}

	mgr := extractor.NewManager()
	if cfg.Split {
		mgr.Register("py", extractor.NewBlockExtractor())
	}

	fw := walker.NewFileWalker(cfg.Extensions, cfg.Excludes)
	paths, errChan := fw.Walk(ctx, cfg.Source)

	var walkErr error
	walkDone := make(chan struct{})
	go func() {
		defer close(walkDone)
		for err := range errChan {
			walkErr = multierr.Append(walkErr, err)
		}
	}()

	logging.Logger.Infow("scan started", "source", cfg.Source, "workers", cfg.Workers, "matchers", len(sc.Matchers()))
	pool := walker.NewWorkerPool(cfg.Workers, snippetProcessor(mgr, sc))
	results, fileErr := walker.Collect(pool.Start(ctx, paths))
	<-walkDone
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", cfg.Source, walkErr)
	}
	for _, err := range multierr.Errors(fileErr) {
		logging.Logger.Warnw("file skipped", "error", err)
	}
	logging.Logger.Infow("scan complete", "snippets", len(results))

	cat := sc.Catalog()
	results = reporter.FilterBySeverity(results, cat, cfg.MinSeverity)

	var out io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	rpt, err := reporter.New(cfg.Format, cat, out)
	if err != nil {
		return err
	}
	if err := rpt.Report(results); err != nil {
		return fmt.Errorf("reporting failed: %w", err)
	}

	if cfg.FailOn != "" && reporter.MaxSeverity(results, cat).Rank() >= cfg.FailOn.Rank() {
		return errThreshold
	}
	return nil
}
