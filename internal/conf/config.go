// config.go: configuration loading and access for the sound monitor
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Settings holds all user configurable options. It is loaded once at startup
// and treated as read-only by the processing path.
type Settings struct {
	Debug bool // true to enable debug logging

	Monitor struct {
		ThresholdDB       float64 // dB level that opens a noise event
		CalibrationOffset float64 // additive operator supplied dB correction
		PreEventSeconds   float64 // audio context kept before the threshold crossing
		PostEventSeconds  float64 // quiet time required to close an event
	}

	Audio struct {
		SampleRate int    // stream sample rate in Hz
		ChunkSize  int    // samples per chunk read from the source
		Channels   int    // number of input channels
		Source     string // capture device name or ID, empty for system default

		WindFilter struct {
			Enabled  bool    // true to high-pass outgoing event audio
			CutoffHz float64 // high-pass cutoff frequency
		}
	}

	Video struct {
		Enabled bool   // true to correlate events with camera clips
		ClipDir string // directory the camera writes clips to
	}

	Output struct {
		Dir    string // directory for recorded WAV clips and segments
		SQLite struct {
			Enabled bool
			Path    string // path to the SQLite database file
		}
	}

	Telemetry struct {
		Enabled bool
		Listen  string // address of the Prometheus metrics endpoint
	}

	Log struct {
		Enabled bool
		Path    string // path to the rotated service log file
	}
}

var settingsInstance *Settings

// Load reads the configuration file, materializing a default one on first
// run, and returns the resulting settings.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets up the viper instance: config name, search paths, defaults
// and default config creation when no file exists yet.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the current defaults as a new config file and
// reads it back in.
func createDefaultConfig(configDir string) error {
	configPath := filepath.Join(configDir, "config.yaml")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if err := viper.SafeWriteConfigAs(configPath); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	fmt.Println("Created default config file at:", configPath)

	return viper.ReadInConfig()
}

// GetDefaultConfigPaths returns the list of directories searched for a
// config file, most specific first.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "sound-monitor"),
	}, nil
}

// Setting returns the settings loaded by Load. It panics when called before
// Load, which is a programming error.
func Setting() *Settings {
	if settingsInstance == nil {
		panic("conf.Setting() called before conf.Load()")
	}
	return settingsInstance
}

// PostRollChunks returns how many consecutive quiet chunks close an event.
func (s *Settings) PostRollChunks() int {
	if s.Audio.ChunkSize <= 0 {
		return 0
	}
	return int(s.Monitor.PostEventSeconds * float64(s.Audio.SampleRate) / float64(s.Audio.ChunkSize))
}

// PreRollChunks returns the ring buffer capacity needed to hold the
// configured amount of pre-event context.
func (s *Settings) PreRollChunks() int {
	if s.Audio.ChunkSize <= 0 {
		return 0
	}
	samples := s.Monitor.PreEventSeconds * float64(s.Audio.SampleRate)
	chunks := samples / float64(s.Audio.ChunkSize)
	if chunks != float64(int(chunks)) {
		return int(chunks) + 1
	}
	return int(chunks)
}
