// Package realtime implements the command running the monitoring pipeline.
package realtime

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/datastore"
	"github.com/DrewThomasson/sound-monitor/internal/detection"
	"github.com/DrewThomasson/sound-monitor/internal/events"
	"github.com/DrewThomasson/sound-monitor/internal/logging"
	"github.com/DrewThomasson/sound-monitor/internal/media"
	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
	"github.com/DrewThomasson/sound-monitor/internal/observability/metrics"
)

// Command creates the realtime monitoring command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Monitor ambient sound levels in realtime",
		Long:  "Continuously sample the audio input, detect sustained loud episodes and record them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list-devices"); list {
				return listDevices()
			}
			return runMonitor(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Audio.Source, "source", viper.GetString("audio.source"), "Audio capture source (\"sysdefault\", \"USB Audio\", etc.)")
	cmd.Flags().StringVar(&settings.Output.Dir, "output", viper.GetString("output.dir"), "Directory to save recordings")
	cmd.Flags().BoolVar(&settings.Audio.WindFilter.Enabled, "windfilter", viper.GetBool("audio.windfilter.enabled"), "Enable wind noise high-pass filter")
	cmd.Flags().Float64Var(&settings.Audio.WindFilter.CutoffHz, "cutoff", viper.GetFloat64("audio.windfilter.cutoffhz"), "Wind filter cutoff frequency in Hz")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address of the telemetry endpoint")
	cmd.Flags().Bool("list-devices", false, "List available capture devices and exit")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

// listDevices prints the available capture devices.
func listDevices() error {
	devices, err := myaudio.ListAudioSources()
	if err != nil {
		return fmt.Errorf("listing capture devices: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No capture devices found.")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%2d: %s (%s)\n", d.Index, d.Name, d.ID)
	}
	return nil
}

// runMonitor wires the pipeline and runs it until interrupted.
func runMonitor(settings *conf.Settings) error {
	var store datastore.Interface
	if s := datastore.New(settings); s != nil {
		if err := s.Open(); err != nil {
			return fmt.Errorf("opening datastore: %w", err)
		}
		defer s.Close()
		store = s
	}

	bus := events.NewBus(events.DefaultBufferSize)
	pipelineMetrics := metrics.NewPipelineMetrics()
	source := myaudio.NewDeviceSource(settings)

	var recorder media.Recorder
	if settings.Video.Enabled {
		recorder = media.NewClipDirRecorder(settings.Video.ClipDir)
	}

	pipeline := detection.NewPipeline(settings, source, store, bus, recorder, pipelineMetrics)

	// consume notifications: console plus the rotated event log
	consumerDone := make(chan struct{})
	go consumeNotifications(settings, bus, consumerDone)

	if settings.Telemetry.Enabled {
		go serveTelemetry(settings.Telemetry.Listen, pipelineMetrics)
	}

	if err := pipeline.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	pipeline.Stop()
	bus.Close()
	<-consumerDone

	return nil
}

// consumeNotifications drains the bus until it closes, echoing
// notifications to the human readable logger and the event log file.
func consumeNotifications(settings *conf.Settings, bus *events.Bus, done chan<- struct{}) {
	defer close(done)

	log := logging.HumanReadable()

	var fileLog *slog.Logger
	if settings.Log.Enabled {
		logger, closer, err := logging.NewFileLogger(settings.Log.Path, "monitor", slog.LevelInfo)
		if err != nil {
			log.Warn("event log disabled", "error", err)
		} else {
			fileLog = logger
			defer func() { _ = closer() }()
		}
	}

	for n := range bus.Notifications() {
		attrs := []any{"type", string(n.Type), "id", n.ID}
		if n.Event != nil {
			attrs = append(attrs,
				"timestamp", n.Event.Timestamp,
				"peak_db", n.Event.PeakDB,
				"avg_db", n.Event.AvgDB,
				"duration", n.Event.Duration,
				"clip", n.Event.ClipName,
				"low_frequency", n.Event.LowFrequency,
			)
		}

		switch n.Type {
		case events.TypeError:
			log.Warn(n.Message, attrs...)
		case events.TypeExtreme:
			log.Error(n.Message, attrs...)
		default:
			log.Info(n.Message, attrs...)
		}

		if fileLog != nil {
			fileLog.Info(n.Message, attrs...)
		}
	}
}

// serveTelemetry exposes the pipeline metrics in Prometheus format.
func serveTelemetry(listen string, m *metrics.PipelineMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Warn("telemetry endpoint stopped", "error", err)
	}
}
