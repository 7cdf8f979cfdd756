// model.go this code defines the data model for the application
package datastore

import "time"

// NoiseEvent represents a single finalized noise event. It is created by
// the event detector and never mutated after creation.
type NoiseEvent struct {
	ID           uint   `gorm:"primaryKey"`
	Timestamp    string `gorm:"index:idx_events_timestamp"` // event start with fractional seconds
	Date         string `gorm:"index:idx_events_date"`      // YYYY-MM-DD
	Time         string // HH:MM:SS
	Weekday      string
	Duration     float64 // seconds
	PeakDB       float64 `gorm:"index:idx_events_peakdb"`
	AvgDB        float64
	ClipName     string
	VideoClip    string // empty when no correlated video exists
	LowFrequency bool   `gorm:"index:idx_events_lowfreq"`
}

// NewNoiseEvent builds the record for an event starting at start.
func NewNoiseEvent(start time.Time, duration, peakDB, avgDB float64, clipName string, lowFrequency bool) *NoiseEvent {
	return &NoiseEvent{
		Timestamp:    start.Format("2006-01-02 15:04:05.000"),
		Date:         start.Format("2006-01-02"),
		Time:         start.Format("15:04:05"),
		Weekday:      start.Weekday().String(),
		Duration:     duration,
		PeakDB:       peakDB,
		AvgDB:        avgDB,
		ClipName:     clipName,
		LowFrequency: lowFrequency,
	}
}

// EventStats holds aggregate statistics over all recorded events.
type EventStats struct {
	Count             int64
	MaxPeakDB         float64
	MinPeakDB         float64
	AvgPeakDB         float64
	TotalDuration     float64
	LowFrequencyCount int64
}
