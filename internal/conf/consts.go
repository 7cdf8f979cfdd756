// conf/consts.go fixed processing constants shared across the application
package conf

import "time"

const (
	// BitDepth is the sample bit depth of all PCM audio handled by the pipeline.
	BitDepth = 16

	// MinEventDuration is the shortest noise event worth keeping, shorter
	// detections are treated as transient spikes and discarded.
	MinEventDuration = 100 * time.Millisecond

	// SegmentDuration is the length of one continuous archival segment.
	SegmentDuration = 60 * time.Second

	// DBReference is the sound pressure level offset applied to full scale
	// 16-bit input when converting RMS amplitude to decibels.
	DBReference = 94.0

	// LowBandMinHz and LowBandMaxHz bound the spectral band used to tell
	// low-frequency rumble apart from broadband or tonal sound.
	LowBandMinHz = 20.0
	LowBandMaxHz = 200.0

	// LowFrequencyRatio is the share of total spectral energy that must fall
	// inside the low band for an event to classify as low-frequency.
	LowFrequencyRatio = 0.4

	// ExtremeMarginDB is how far above the detection threshold a peak must
	// reach before the event is flagged for urgent notification.
	ExtremeMarginDB = 10.0
)
