package myaudio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/logging"
)

// ErrSourceClosed is returned by ReadChunk after the source was closed.
var ErrSourceClosed = errors.New("audio source closed")

// ChunkSource supplies fixed-length chunks from an audio input. ReadChunk
// blocks until a full chunk is available or the source is closed.
type ChunkSource interface {
	Open() error
	ReadChunk() (Chunk, error)
	Close() error
}

// captureSource holds information about a capture device.
type captureSource struct {
	Name    string
	ID      string
	Pointer unsafe.Pointer
}

// AudioDeviceInfo holds information about an audio device.
type AudioDeviceInfo struct {
	Index int
	Name  string
	ID    string
}

// ListAudioSources returns a list of available audio capture devices.
func ListAudioSources() ([]AudioDeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	devices := make([]AudioDeviceInfo, 0, len(infos))
	for i, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		devices = append(devices, AudioDeviceInfo{
			Index: i,
			Name:  info.Name(),
			ID:    decodedID,
		})
	}

	return devices, nil
}

// DeviceSource captures audio from a local device via malgo. The device
// callback hands frames to a buffered channel; ReadChunk assembles them
// into chunks of the configured size.
type DeviceSource struct {
	settings *conf.Settings

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	frames  chan []int16
	done    chan struct{}
	pending []int16

	closeOnce sync.Once
}

// NewDeviceSource creates a capture source for the configured device.
func NewDeviceSource(settings *conf.Settings) *DeviceSource {
	return &DeviceSource{
		settings: settings,
		// Room for about a second of callbacks at typical period sizes.
		frames: make(chan []int16, 64),
		done:   make(chan struct{}),
	}
}

// Open negotiates the device and starts capturing. Failure here is fatal
// for the pipeline; there is nothing to monitor without a device.
func (s *DeviceSource) Open() error {
	log := logging.ForService("capture")

	// Pick a platform native backend, auto selection is flaky on some
	// ALSA setups.
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	ctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		if s.settings.Debug {
			log.Debug("malgo", "message", strings.TrimSpace(message))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}
	s.ctx = ctx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(s.settings.Audio.Channels)
	deviceConfig.SampleRate = uint32(s.settings.Audio.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(s.settings.Audio.ChunkSize)
	deviceConfig.Alsa.NoMMap = 1

	if s.settings.Audio.Source != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			s.teardownContext()
			return fmt.Errorf("failed to get capture devices: %w", err)
		}
		source, err := selectCaptureSource(s.settings.Audio.Source, infos)
		if err != nil {
			s.teardownContext()
			return err
		}
		deviceConfig.Capture.DeviceID = source.Pointer
		log.Info("selected capture device", "name", source.Name, "id", source.ID)
	}

	onReceiveFrames := func(_, pSamples []byte, _ uint32) {
		samples := BytesToSamples(pSamples)
		select {
		case <-s.done:
		case s.frames <- samples:
		default:
			// Reader has fallen behind, skipping this period is better
			// than blocking the device callback.
			log.Warn("capture frame queue full, dropping period")
		}
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onReceiveFrames,
	})
	if err != nil {
		s.teardownContext()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		s.teardownContext()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

// ReadChunk blocks until one full chunk of samples has been captured.
func (s *DeviceSource) ReadChunk() (Chunk, error) {
	chunkSize := s.settings.Audio.ChunkSize

	for len(s.pending) < chunkSize {
		batch, ok := <-s.frames
		if !ok {
			return Chunk{}, ErrSourceClosed
		}
		s.pending = append(s.pending, batch...)
	}

	samples := make([]int16, chunkSize)
	copy(samples, s.pending[:chunkSize])
	s.pending = append(s.pending[:0], s.pending[chunkSize:]...)

	return Chunk{
		Samples:    samples,
		SampleRate: s.settings.Audio.SampleRate,
		Timestamp:  time.Now(),
	}, nil
}

// Close stops the device and unblocks any pending ReadChunk.
func (s *DeviceSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.device != nil {
			// Uninit blocks until the data callback has finished.
			s.device.Uninit()
		}
		s.teardownContext()
		close(s.frames)
	})
	return nil
}

func (s *DeviceSource) teardownContext() {
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx.Free()
		s.ctx = nil
	}
}

// selectCaptureSource picks the capture device matching the configured
// source setting.
func selectCaptureSource(audioSource string, infos []malgo.DeviceInfo) (captureSource, error) {
	for _, info := range infos {
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}

		if matchesDeviceSettings(decodedID, info, audioSource) {
			return captureSource{
				Name:    info.Name(),
				ID:      decodedID,
				Pointer: info.ID.Pointer(),
			}, nil
		}
	}

	return captureSource{}, fmt.Errorf("no suitable capture source found for device setting %q", audioSource)
}

// matchesDeviceSettings checks if the device matches the configured source.
func matchesDeviceSettings(decodedID string, info malgo.DeviceInfo, audioSource string) bool {
	if runtime.GOOS == "windows" && audioSource == "sysdefault" {
		// There is no "sysdefault" device on Windows, use the default
		// device instead.
		return info.IsDefault == 1
	}
	return decodedID == audioSource || strings.Contains(info.Name(), audioSource)
}

// hexToASCII converts a hexadecimal string to an ASCII string.
func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(bytes), "\x00"), nil
}
