// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("monitor.thresholddb", 70.0)
	viper.SetDefault("monitor.calibrationoffset", 0.0)
	viper.SetDefault("monitor.preeventseconds", 2.0)
	viper.SetDefault("monitor.posteventseconds", 2.0)

	viper.SetDefault("audio.samplerate", 44100)
	viper.SetDefault("audio.chunksize", 1024)
	viper.SetDefault("audio.channels", 1)
	viper.SetDefault("audio.source", "sysdefault")
	viper.SetDefault("audio.windfilter.enabled", false)
	viper.SetDefault("audio.windfilter.cutoffhz", 80.0)

	viper.SetDefault("video.enabled", false)
	viper.SetDefault("video.clipdir", "video/")

	viper.SetDefault("output.dir", "recordings/")
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "sound_events.db")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("log.enabled", true)
	viper.SetDefault("log.path", "sound-monitor.log")
}
