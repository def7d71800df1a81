package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclass/internal/adapters/otel"
	"github.com/emiliopalmerini/mclass/internal/adapters/prometheus"
	"github.com/emiliopalmerini/mclass/internal/adapters/replay"
	"github.com/emiliopalmerini/mclass/internal/domain"
	"github.com/emiliopalmerini/mclass/internal/monitor"
	"github.com/emiliopalmerini/mclass/internal/ports"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Run a monitoring session",
	Long: `Run one monitoring session and save it when it ends.

Frames come from a replay script: a YAML file listing, per captured frame,
the emotion and objects the classifier and detector report. The session
ends when --minutes elapse, the script runs out, or on Ctrl-C; it is
saved in every case.

With --archive-frames, every frame that produced a label is written to
<frames dir>/<session id>/<label>/<uuid>.jpg. Frames take their image from
the script's "image" field.

With --listen, the running session is served at /live (JSON snapshot)
and the pipeline counters at /metrics (Prometheus).

Examples:
  mclass record --script lesson.yaml --minutes 45
  mclass record --script lesson.yaml --minutes 45 --listen :9100
  mclass record --script lesson.yaml --drop-policy drop-oldest --queue-size 8
  mclass record --script lesson.yaml --minutes 45 --archive-frames`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

// Flags
var (
	recordMinutes        float64
	recordScript         string
	recordListen         string
	recordSampleInterval time.Duration
	recordQueueSize      int
	recordDropPolicy     string
	recordArchiveFrames  bool
)

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().Float64VarP(&recordMinutes, "minutes", "m", 0, "Session length in minutes")
	recordCmd.Flags().StringVarP(&recordScript, "script", "s", "", "Replay script (YAML)")
	recordCmd.Flags().StringVar(&recordListen, "listen", "", "Serve /live and /metrics on this address while recording")
	recordCmd.Flags().DurationVar(&recordSampleInterval, "sample-interval", 0, "Minimum time between classified frames")
	recordCmd.Flags().IntVar(&recordQueueSize, "queue-size", 0, "Frames waiting for classification before dropping")
	recordCmd.Flags().StringVar(&recordDropPolicy, "drop-policy", "", "drop-newest or drop-oldest")
	recordCmd.Flags().BoolVar(&recordArchiveFrames, "archive-frames", false, "Keep the image of every labelled frame")

	_ = recordCmd.MarkFlagRequired("minutes")
	_ = recordCmd.MarkFlagRequired("script")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("sample-interval") {
		cfg.SampleInterval = recordSampleInterval
	}
	if flags.Changed("queue-size") {
		cfg.QueueSize = recordQueueSize
	}
	if flags.Changed("drop-policy") {
		cfg.DropPolicy = recordDropPolicy
	}
	if flags.Changed("archive-frames") {
		cfg.ArchiveFrames = recordArchiveFrames
	}

	app, err := newAppContextFromConfig(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	script, err := replay.Load(recordScript)
	if err != nil {
		return err
	}

	duration := time.Duration(recordMinutes * float64(time.Minute))
	record, err := recordSession(ctx, app, script, duration, recordListen)
	if record != nil {
		printRecordSummary(cmd.OutOrStdout(), record)
	}
	return err
}

// recordSession runs one session from script and returns the saved record.
func recordSession(ctx context.Context, app *AppContext, script *replay.Script, duration time.Duration, listen string) (*domain.SessionRecord, error) {
	exporter, err := newExporter(ctx, app)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := exporter.Close(context.WithoutCancel(ctx)); err != nil {
			app.Logger.Warn("failed to flush metrics exporter", "error", err)
		}
	}()

	var (
		observer  ports.PipelineObserver = prometheus.NewNoOpCollector()
		collector *prometheus.Collector
	)
	if listen != "" {
		collector = prometheus.NewCollector()
		observer = collector
	}

	opts := []monitor.Option{
		monitor.WithExporter(exporter),
		monitor.WithObserver(observer),
		monitor.WithLogger(app.Logger),
	}
	archive, err := openFrameArchive(app.Config)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		opts = append(opts, monitor.WithFrameArchive(archive))
	}

	source := replay.NewSource(script)
	defer source.Close()

	m, err := monitor.New(
		app.Config.Monitor(duration),
		source,
		replay.NewClassifier(script),
		replay.NewDetector(script),
		app.Store,
		opts...,
	)
	if err != nil {
		return nil, err
	}

	liveErr := make(chan error, 1)
	liveCtx, stopLive := context.WithCancel(ctx)
	if collector != nil {
		go func() {
			liveErr <- monitor.ServeLive(liveCtx, listen, monitor.LiveHandler(m, collector.Handler()), app.Logger)
		}()
	} else {
		liveErr <- nil
	}

	record, runErr := m.Run(ctx)

	stopLive()
	if err := <-liveErr; err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("live endpoint: %w", err))
	}
	return record, runErr
}

func newExporter(ctx context.Context, app *AppContext) (ports.MetricsExporter, error) {
	cfg := app.Config
	if !cfg.OTelEnabled {
		return otel.NewNoOpExporter(), nil
	}
	exp, err := otel.NewExporter(ctx, otel.Config{
		Endpoint:       cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
		Insecure:       cfg.OTelInsecure,
		ServiceVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	return exp, nil
}
