// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
)

// Interface abstracts the underlying database implementation and defines
// the operations the pipeline and the analyze command depend on.
type Interface interface {
	Open() error
	Close() error
	Save(event *NoiseEvent) error
	GetAllEvents() ([]NoiseEvent, error)
	GetLastEvents(limit int) ([]NoiseEvent, error)
	// analytics, consumed by the analyze command
	Stats() (EventStats, error)
	CountByWeekday() (map[string]int64, error)
	CountByHour() ([24]int64, error)
	TopEvents(limit int) ([]NoiseEvent, error)
	NightEvents() ([]NoiseEvent, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a datastore instance based on the provided configuration.
// Returns nil when no database output is enabled.
func New(settings *conf.Settings) Interface {
	if settings.Output.SQLite.Enabled {
		return &SQLiteStore{Settings: settings}
	}
	return nil
}

// Save inserts a new noise event record into the database.
func (ds *DataStore) Save(event *NoiseEvent) error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if err := ds.DB.Create(event).Error; err != nil {
		return fmt.Errorf("saving noise event: %w", err)
	}
	return nil
}

// GetAllEvents retrieves all events in chronological order.
func (ds *DataStore) GetAllEvents() ([]NoiseEvent, error) {
	var events []NoiseEvent
	if err := ds.DB.Order("timestamp").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("getting all events: %w", err)
	}
	return events, nil
}

// GetLastEvents retrieves the most recent events, newest first.
func (ds *DataStore) GetLastEvents(limit int) ([]NoiseEvent, error) {
	var events []NoiseEvent
	if err := ds.DB.Order("timestamp desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("getting last events: %w", err)
	}
	return events, nil
}

// Stats computes aggregate statistics over all recorded events.
func (ds *DataStore) Stats() (EventStats, error) {
	var stats EventStats

	if err := ds.DB.Model(&NoiseEvent{}).Count(&stats.Count).Error; err != nil {
		return EventStats{}, fmt.Errorf("counting events: %w", err)
	}
	if stats.Count == 0 {
		return stats, nil
	}

	row := ds.DB.Model(&NoiseEvent{}).
		Select("MAX(peak_db), MIN(peak_db), AVG(peak_db), SUM(duration)").
		Row()
	if err := row.Scan(&stats.MaxPeakDB, &stats.MinPeakDB, &stats.AvgPeakDB, &stats.TotalDuration); err != nil {
		return EventStats{}, fmt.Errorf("aggregating event stats: %w", err)
	}

	if err := ds.DB.Model(&NoiseEvent{}).
		Where("low_frequency = ?", true).
		Count(&stats.LowFrequencyCount).Error; err != nil {
		return EventStats{}, fmt.Errorf("counting low frequency events: %w", err)
	}

	return stats, nil
}

// CountByWeekday returns the number of events per day of week.
func (ds *DataStore) CountByWeekday() (map[string]int64, error) {
	type weekdayCount struct {
		Weekday string
		Count   int64
	}
	var rows []weekdayCount
	if err := ds.DB.Model(&NoiseEvent{}).
		Select("weekday, COUNT(*) as count").
		Group("weekday").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("counting events by weekday: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Weekday] = r.Count
	}
	return counts, nil
}

// CountByHour returns the number of events per hour of day, indexed 0-23.
func (ds *DataStore) CountByHour() ([24]int64, error) {
	type hourCount struct {
		Hour  int
		Count int64
	}
	var rows []hourCount
	// Time column is formatted HH:MM:SS, the leading two digits are the hour.
	if err := ds.DB.Model(&NoiseEvent{}).
		Select("CAST(substr(time, 1, 2) AS INTEGER) as hour, COUNT(*) as count").
		Group("hour").
		Scan(&rows).Error; err != nil {
		return [24]int64{}, fmt.Errorf("counting events by hour: %w", err)
	}

	var counts [24]int64
	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < 24 {
			counts[r.Hour] = r.Count
		}
	}
	return counts, nil
}

// TopEvents retrieves the loudest events by peak dB, loudest first.
func (ds *DataStore) TopEvents(limit int) ([]NoiseEvent, error) {
	var events []NoiseEvent
	if err := ds.DB.Order("peak_db desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("getting top events: %w", err)
	}
	return events, nil
}

// NightEvents retrieves events recorded between 23:00 and 06:00, loudest
// first.
func (ds *DataStore) NightEvents() ([]NoiseEvent, error) {
	var events []NoiseEvent
	if err := ds.DB.
		Where("time >= ? OR time < ?", "23:00:00", "06:00:00").
		Order("peak_db desc").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("getting night events: %w", err)
	}
	return events, nil
}

// Close closes the database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db handle: %w", err)
	}
	return sqlDB.Close()
}

// createGormLogger returns a silent GORM logger, query logging would drown
// the structured application logs.
func createGormLogger() gormlogger.Interface {
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

// performAutoMigration runs the schema migration for the event table.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&NoiseEvent{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}
	if debug {
		fmt.Printf("%s database connection initialized: %s (%s)\n", dbType, connectionInfo, time.Now().Format(time.RFC3339))
	}
	return nil
}
