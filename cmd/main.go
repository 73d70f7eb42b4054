package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"putgetbench/benchmark"
	"putgetbench/config"
	"putgetbench/progress"
	"putgetbench/report"
	"putgetbench/telemetry"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	fv := &flagValues{}
	var params benchmark.BenchmarkParams

	cmd := &cobra.Command{
		Use: "putgetbench [flags] endpoint bucket root_prefix put_workers put_per_worker get_workers get_per_worker\n" +
			"  putgetbench [flags] endpoint bucket root_prefix put_workers get_workers",
		Short: "Concurrent PUT/GET load generator for object storage",
		Long: `putgetbench drives concurrent put and get workers against a bucket and
reports count, total time, average time and bytes per operation type.

With seven arguments every worker runs a fixed number of iterations. With
five arguments workers run until interrupted (SIGINT/SIGTERM) or until
--duration elapses. Use "-" as endpoint to keep the SDK resolved one.`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch fv.backend {
			case backendS3, backendOCI, backendMemory:
			default:
				return &benchmark.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", fv.backend)}
			}
			p, err := parseParams(args, fv)
			if err != nil {
				return err
			}
			params = p
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// arguments are valid, later errors are not usage errors
			cmd.SilenceUsage = true
			return run(cmd.Context(), fv, params, stdout, stderr)
		},
	}
	// usage and help share stderr, stdout only carries the report
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&fv.backend, "backend", backendS3, "storage backend: s3, oci or memory")
	f.StringVar(&fv.region, "region", "us-east-2", "S3 region")
	f.StringVar(&fv.accessKey, "access-key", os.Getenv("PUTGETBENCH_ACCESS_KEY"), "S3 access key, default credential chain when empty")
	f.StringVar(&fv.secretKey, "secret-key", os.Getenv("PUTGETBENCH_SECRET_KEY"), "S3 secret key")
	f.StringVar(&fv.ociConfig, "oci-config", config.DefaultOCIConfigPath, "path to OCI config file")
	f.StringVar(&fv.ociProfile, "oci-profile", "DEFAULT", "OCI config profile")
	f.StringVar(&fv.ociNamespace, "oci-namespace", "", "OCI object storage namespace, fetched when empty")
	f.DurationVar(&fv.memoryLatency, "memory-latency", 0, "simulated latency of the memory backend")

	f.StringVar(&fv.getMode, "get-mode", "listing", "how get workers pick keys: listing or blind")
	f.StringVar(&fv.minSize, "min-size", "1KiB", "smallest payload size (inclusive)")
	f.StringVar(&fv.maxSize, "max-size", "100MiB", "largest payload size (exclusive)")
	f.DurationVar(&fv.backoff, "backoff", benchmark.DefaultBackoff, "wait after an empty listing")
	f.IntVar(&fv.maxEmptyListings, "max-empty-listings", 0, "empty listings before a continuous get attempt is skipped, 0 retries forever")
	f.DurationVar(&fv.requestTimeout, "request-timeout", 0, "timeout of a single storage call, 0 for none")
	f.DurationVar(&fv.duration, "duration", 0, "stop a continuous run after this long, 0 runs until interrupted")
	f.Int64Var(&fv.seed, "seed", 0, "random seed, 0 picks one from the clock")

	f.BoolVar(&fv.json, "json", false, "print the report as JSON")
	f.BoolVarP(&fv.quiet, "quiet", "q", false, "hide the progress bar")
	f.StringVar(&fv.logFile, "log-file", "", "diagnostic log file (default putgetbench_<timestamp>.log)")
	f.BoolVarP(&fv.verbose, "verbose", "v", false, "debug logging, echoed on stderr")
	f.StringVar(&fv.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")

	return cmd
}

func run(ctx context.Context, fv *flagValues, params benchmark.BenchmarkParams, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logPath := fv.logFile
	if logPath == "" {
		logPath = defaultLogFile(time.Now())
	}
	log, closeLog, err := newLogger(logPath, fv.verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := benchmark.SetMaxResources(log); err != nil {
		log.Warn("could not raise resource limits", zap.Error(err))
	}

	store, err := newStorage(ctx, fv, params, log)
	if err != nil {
		log.Error("storage setup failed", zap.Error(err))
		return err
	}

	metrics := telemetry.NewMetrics()
	if fv.metricsAddr != "" {
		go func() {
			log.Info("serving metrics", zap.String("addr", fv.metricsAddr))
			if err := metrics.Serve(fv.metricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	opts := benchmark.Options{Logger: log, Metrics: metrics}
	var bar *progress.ProgressBar
	if !fv.quiet {
		bar = progress.NewProgressBar(stderr, params.TotalIterations())
		bar.SetCaption(fmt.Sprintf("%s PUT/GET", params.Mode))
		bar.Start()
		opts.Progress = bar.Tick
	}

	summary, err := benchmark.RunBenchmark(ctx, params, store, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if fv.json {
		return report.RenderJSON(stdout, summary)
	}
	report.Render(stdout, summary)
	return nil
}
