package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/config"
	"github.com/harrison/doctest/internal/finder"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/languages"
	"github.com/harrison/doctest/internal/logger"
	"github.com/harrison/doctest/internal/report"
	"github.com/harrison/doctest/internal/runner"
)

// ErrTestsFailed is returned by the run command when at least one example
// failed.
var ErrTestsFailed = errors.New("doctests failed")

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file-or-directory>...",
		Short: "Run the doctests found in files",
		Long: `Run the examples of every doctest file given on the command line.

Directories are searched recursively for .md, .markdown, .txt and .rst
files; hidden directories are skipped. Each file is parsed once per
language backend and the files are run concurrently. Reports are printed
in file order, followed by a summary.

Configuration is loaded from the nearest .doctest/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  doctest run README.md
  doctest run docs/ --language sh
  doctest run -o ELLIPSIS -o NORMALIZE_WHITESPACE guide.md
  doctest run --fail-fast --max-concurrency 2 docs/
  doctest run --report .doctest/report.json docs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Report every example, not only failures")
	cmd.Flags().StringSliceP("option", "o", nil, "Option flag enabled for every example (repeatable)")
	cmd.Flags().StringSliceP("language", "l", nil, "Language backend to use (repeatable, default: all available)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().Int("max-concurrency", 0, "Maximum number of files run concurrently (0 = all)")
	cmd.Flags().String("timeout", "", "Maximum run time (e.g., 30s, 5m)")
	cmd.Flags().Bool("fail-fast", false, "Stop each file at its first failing example")
	cmd.Flags().String("report", "", "Append a JSON record of the run to this file")
	cmd.Flags().String("pattern", "", "Wildcard matched against file names found in directories")

	return cmd
}

// loadConfig reads the --config file, or the nearest config above the
// working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, _, err := config.Discover(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// fileRun holds the outcome of one file. Reports are buffered so that they
// can be printed in file order.
type fileRun struct {
	path   string
	out    bytes.Buffer
	runner *runner.Runner
}

// lockedWriter serializes writes to a writer that is not a file.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Build flag pointers for merge (only changed values)
	var verbosePtr, failFastPtr *bool
	var optionsPtr, languagesPtr *[]string
	var logLevelPtr, reportPtr *string
	var concurrencyPtr *int
	var timeoutPtr *time.Duration

	if cmd.Flags().Changed("verbose") {
		v, _ := cmd.Flags().GetBool("verbose")
		verbosePtr = &v
	}
	if cmd.Flags().Changed("option") {
		v, _ := cmd.Flags().GetStringSlice("option")
		optionsPtr = &v
	}
	if cmd.Flags().Changed("language") {
		v, _ := cmd.Flags().GetStringSlice("language")
		languagesPtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("max-concurrency") {
		v, _ := cmd.Flags().GetInt("max-concurrency")
		concurrencyPtr = &v
	}
	if cmd.Flags().Changed("timeout") {
		s, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", s, err)
		}
		timeoutPtr = &timeout
	}
	if cmd.Flags().Changed("fail-fast") {
		v, _ := cmd.Flags().GetBool("fail-fast")
		failFastPtr = &v
	}
	if cmd.Flags().Changed("report") {
		v, _ := cmd.Flags().GetString("report")
		reportPtr = &v
	}

	cfg.MergeWithFlags(verbosePtr, optionsPtr, languagesPtr, logLevelPtr, concurrencyPtr, timeoutPtr, failFastPtr, reportPtr)

	registry := flags.Default()
	if err := cfg.Validate(registry); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	optionflags, err := registry.Parse(cfg.OptionFlags)
	if err != nil {
		return err
	}

	// Log lines and shell stderr share one writer
	stderr := cmd.ErrOrStderr()
	if _, ok := stderr.(*os.File); !ok {
		stderr = &lockedWriter{w: stderr}
	}
	log := logger.NewConsoleLogger(stderr, cfg.LogLevel)

	shellOpts := cfg.ShellOptions()
	shellOpts.Stderr = stderr
	shellOpts.Logger = log
	backends, err := languages.Default(shellOpts)
	if err != nil {
		return err
	}

	pattern, _ := cmd.Flags().GetString("pattern")
	scan, err := finder.Collect(args, finder.ScanOptions{Pattern: pattern})
	if err != nil {
		return err
	}
	for _, scanErr := range scan.Errors {
		log.LogWarn(scanErr.Error())
	}
	log.LogDebug(fmt.Sprintf("found %d doctest files", len(scan.Files)))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	runs := make([]*fileRun, len(scan.Files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}
	for i, path := range scan.Files {
		fr := &fileRun{path: path}
		runs[i] = fr
		g.Go(func() error {
			err := runFile(gctx, fr, cfg, optionflags, backends, log)
			log.LogProgress(int(done.Add(1)), len(scan.Files))
			return err
		})
	}
	runErr := g.Wait()

	merged := runner.New(runner.Options{})
	for _, fr := range runs {
		if _, err := cmd.OutOrStdout().Write(fr.out.Bytes()); err != nil {
			return err
		}
		if fr.runner != nil {
			merged.Merge(fr.runner)
		}
	}
	if err := merged.Summarize(cmd.OutOrStdout(), cfg.Verbose); err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		run := report.NewRun(started, time.Since(started), registry.Format(optionflags), merged.Records())
		if err := report.Append(cfg.ReportFile, run); err != nil {
			return err
		}
		log.LogDebug(fmt.Sprintf("report appended to %s", cfg.ReportFile))
	}

	if runErr != nil {
		return runErr
	}
	if failed := merged.Totals().Failed; failed > 0 {
		return fmt.Errorf("%w: %d failures", ErrTestsFailed, failed)
	}
	return nil
}

// runFile runs every DocTest of one file with its own runner. A fail-fast
// failure ends the file but not the whole run.
func runFile(ctx context.Context, fr *fileRun, cfg *config.Config, optionflags flags.Flag, backends *backend.Registry, log *logger.ConsoleLogger) error {
	start := time.Now()

	tests, used, err := finder.Find(fr.path, backends, finder.Options{
		Languages:    cfg.Languages,
		Markdown:     cfg.Markdown,
		ExcludeEmpty: cfg.ExcludeEmpty,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", fr.path, err)
	}
	log.LogFileStart(fr.path, len(tests))

	var reporter runner.Reporter = runner.NewTextReporter(&fr.out, cfg.Verbose)
	if cfg.FailFast {
		reporter = runner.NewFailFastReporter(&fr.out, cfg.Verbose)
	}
	fr.runner = runner.New(runner.Options{Flags: optionflags, Reporter: reporter})

	for i, test := range tests {
		log.LogDebug(fmt.Sprintf("running %s with %s (%d examples)", test.Name, used[i].Name(), len(test.Examples)))
		if _, err := fr.runner.Run(ctx, test, used[i]); err != nil {
			if runner.IsFailure(err) {
				log.LogDebug(err.Error())
				break
			}
			return err
		}
	}

	log.LogFileComplete(fr.path, fr.runner.Totals(), time.Since(start))
	return nil
}
