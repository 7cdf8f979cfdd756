package detection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/datastore"
	"github.com/DrewThomasson/sound-monitor/internal/events"
	"github.com/DrewThomasson/sound-monitor/internal/logging"
	"github.com/DrewThomasson/sound-monitor/internal/media"
	"github.com/DrewThomasson/sound-monitor/internal/myaudio"
	"github.com/DrewThomasson/sound-monitor/internal/observability/metrics"
)

// Pipeline owns the ingestion loop. A single worker goroutine reads chunks
// from the source and drives the detector and segmenter; it is the sole
// owner of their state, so the hot path needs no locks. Results leave the
// worker as immutable snapshots on the notification bus.
type Pipeline struct {
	settings *conf.Settings
	source   myaudio.ChunkSource
	store    datastore.Interface
	bus      *events.Bus
	recorder media.Recorder
	metrics  *metrics.PipelineMetrics

	detector  *Detector
	segmenter *Segmenter

	// discard count already mirrored into metrics, worker-owned
	discardedSeen uint64

	cancel context.CancelFunc
	done   chan struct{}

	log *slog.Logger
}

// NewPipeline wires a pipeline from its collaborators. store may be nil
// when database output is disabled; recorder may be nil when video
// correlation is disabled.
func NewPipeline(settings *conf.Settings, source myaudio.ChunkSource, store datastore.Interface, bus *events.Bus, recorder media.Recorder, m *metrics.PipelineMetrics) *Pipeline {
	if recorder == nil {
		recorder = media.NoopRecorder{}
	}

	p := &Pipeline{
		settings:  settings,
		source:    source,
		store:     store,
		bus:       bus,
		recorder:  recorder,
		metrics:   m,
		detector:  NewDetector(settings),
		segmenter: NewSegmenter(settings.Audio.SampleRate),
		done:      make(chan struct{}),
		log:       logging.ForService("pipeline"),
	}

	p.detector.SetEventStartHook(func(start time.Time) {
		p.recorder.Start(start)
		p.bus.Publish(events.New(events.TypeStatus, "loud noise detected, recording", nil))
	})

	return p
}

// Start opens the audio source and begins the ingestion loop. A source
// that cannot be opened at all is the one fatal condition.
func (p *Pipeline) Start() error {
	if err := p.source.Open(); err != nil {
		return fmt.Errorf("opening audio source: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	go p.run(ctx)

	p.log.Info("monitoring started",
		"threshold_db", p.settings.Monitor.ThresholdDB,
		"sample_rate", p.settings.Audio.SampleRate,
		"chunk_size", p.settings.Audio.ChunkSize,
		"wind_filter", p.settings.Audio.WindFilter.Enabled,
	)
	p.bus.Publish(events.New(events.TypeStatus, "monitoring started", nil))

	return nil
}

// Stop shuts the pipeline down: it signals the worker, unblocks any pending
// read and returns only after the worker has finalized in-flight state and
// exited. No event is silently dropped on shutdown.
func (p *Pipeline) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	_ = p.source.Close()
	<-p.done

	p.log.Info("monitoring stopped")
	p.bus.Publish(events.New(events.TypeStatus, "monitoring stopped", nil))
}

// run is the ingestion worker. Stopping is cooperative: the context is
// checked once per chunk, there is no cancellation mid-chunk.
func (p *Pipeline) run(ctx context.Context) {
	defer close(p.done)
	defer p.flush()

	calibration := p.settings.Monitor.CalibrationOffset

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		chunk, err := p.source.ReadChunk()
		if err != nil {
			if errors.Is(err, myaudio.ErrSourceClosed) || ctx.Err() != nil {
				return
			}
			// transient read failure, skip this step and keep monitoring
			if p.metrics != nil {
				p.metrics.RecordReadError()
			}
			p.log.Warn("audio read failed", "error", err)
			p.bus.Publish(events.New(events.TypeError, fmt.Sprintf("audio read failed: %v", err), nil))
			continue
		}

		db := myaudio.CalculateDB(chunk.Samples, calibration)
		if p.metrics != nil {
			p.metrics.RecordChunk(db)
		}

		if res := p.detector.Process(chunk, db); res != nil {
			p.handleEvent(res)
		}
		p.syncDiscardedMetric()
		if seg := p.segmenter.Process(chunk); seg != nil {
			p.writeSegment(seg)
		}
	}
}

// flush finalizes in-flight detector and segmenter state on worker exit.
func (p *Pipeline) flush() {
	if res := p.detector.Flush(); res != nil {
		p.handleEvent(res)
	}
	p.syncDiscardedMetric()
	if seg := p.segmenter.Flush(); seg != nil {
		p.writeSegment(seg)
	}
}

// syncDiscardedMetric mirrors the detector's transient spike discard count
// into the metrics, including spikes discarded by the shutdown flush.
func (p *Pipeline) syncDiscardedMetric() {
	if p.metrics == nil {
		return
	}
	for ; p.discardedSeen < p.detector.Discarded(); p.discardedSeen++ {
		p.metrics.RecordEventDiscarded()
	}
}

// handleEvent encodes, correlates, persists and announces one finalized
// event. Encoding happens on the worker; sustained encoder slowness adds
// latency but never corrupts state.
func (p *Pipeline) handleEvent(res *Result) {
	clipName := fmt.Sprintf("noise_%s.wav", res.Start.Format("20060102_150405"))
	clipPath := filepath.Join(p.settings.Output.Dir, clipName)

	videoPath := p.recorder.Stop()

	if err := myaudio.SavePCMToWAV(clipPath, res.Samples, res.SampleRate, p.settings.Audio.Channels); err != nil {
		// no clip, no record
		if p.metrics != nil {
			p.metrics.RecordEncodeError()
		}
		p.log.Error("failed to encode event audio, dropping event", "clip", clipPath, "error", err)
		p.bus.Publish(events.New(events.TypeError, fmt.Sprintf("failed to encode event audio: %v", err), nil))
		return
	}

	event := datastore.NewNoiseEvent(res.Start, res.Duration, res.PeakDB, res.AvgDB, clipName, res.LowFrequency)
	event.VideoClip = media.MergeAudioVideo(clipPath, videoPath)

	if p.store != nil {
		if err := p.store.Save(event); err != nil {
			// The encoded clip stays on disk so the operator can recover
			// the recording.
			if p.metrics != nil {
				p.metrics.RecordPersistError()
			}
			p.log.Error("failed to persist event", "clip", clipPath, "error", err)
			p.bus.Publish(events.New(events.TypeError, fmt.Sprintf("failed to persist event: %v", err), nil))
		}
	}

	if p.metrics != nil {
		p.metrics.RecordEvent()
	}
	p.bus.Publish(events.New(events.TypeEvent,
		fmt.Sprintf("noise event: peak %.1f dB over %.1f s", res.PeakDB, res.Duration), event))

	if res.Extreme {
		if p.metrics != nil {
			p.metrics.RecordExtremeEvent()
		}
		p.bus.Publish(events.New(events.TypeExtreme,
			fmt.Sprintf("extreme noise event: peak %.1f dB", res.PeakDB), event))
	}
}

// writeSegment archives one continuous segment.
func (p *Pipeline) writeSegment(seg *Segment) {
	name := fmt.Sprintf("segment_%s.wav", seg.Start.Format("20060102_150405"))
	path := filepath.Join(p.settings.Output.Dir, "segments", name)

	if err := myaudio.SavePCMToWAV(path, seg.Samples, seg.SampleRate, p.settings.Audio.Channels); err != nil {
		p.log.Error("failed to write archival segment", "path", path, "error", err)
		p.bus.Publish(events.New(events.TypeError, fmt.Sprintf("failed to write segment: %v", err), nil))
		return
	}

	if p.metrics != nil {
		p.metrics.RecordSegment()
	}
	p.log.Debug("archival segment written", "path", path, "samples", len(seg.Samples))
}
