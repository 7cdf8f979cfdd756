// Package analyze implements the command printing a report over the
// recorded noise events, for presenting to city councils or noise
// enforcement.
package analyze

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DrewThomasson/sound-monitor/internal/conf"
	"github.com/DrewThomasson/sound-monitor/internal/datastore"
)

// Command creates the analyze command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print a summary report of recorded noise events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(settings)
		},
	}
}

func runAnalyze(settings *conf.Settings) error {
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	if stats.Count == 0 {
		fmt.Println("No events recorded yet.")
		return nil
	}

	divider := strings.Repeat("=", 70)
	fmt.Println(divider)
	fmt.Println("SOUND MONITOR - ANALYSIS REPORT")
	fmt.Println(divider)
	fmt.Println()

	fmt.Println("SUMMARY STATISTICS")
	fmt.Printf("   Total Events: %d\n", stats.Count)
	fmt.Printf("   Highest Peak: %.2f dB\n", stats.MaxPeakDB)
	fmt.Printf("   Lowest Peak: %.2f dB\n", stats.MinPeakDB)
	fmt.Printf("   Average Peak: %.2f dB\n", stats.AvgPeakDB)
	fmt.Printf("   Total Duration: %.1f s\n", stats.TotalDuration)
	fmt.Printf("   Low-Frequency Events: %d\n", stats.LowFrequencyCount)
	fmt.Println()

	if err := printWeekdays(store); err != nil {
		return err
	}
	if err := printHours(store); err != nil {
		return err
	}
	if err := printTopEvents(store); err != nil {
		return err
	}
	if err := printNightEvents(store, stats.Count); err != nil {
		return err
	}

	fmt.Println(divider)
	return nil
}

func printWeekdays(store datastore.Interface) error {
	counts, err := store.CountByWeekday()
	if err != nil {
		return err
	}

	fmt.Println("EVENTS BY DAY OF WEEK")
	dayOrder := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for _, day := range dayOrder {
		count := counts[day]
		fmt.Printf("   %-10s: %3d %s\n", day, count, bar(count))
	}
	fmt.Println()
	return nil
}

func printHours(store datastore.Interface) error {
	counts, err := store.CountByHour()
	if err != nil {
		return err
	}

	fmt.Println("EVENTS BY HOUR OF DAY")
	for hour, count := range counts {
		fmt.Printf("   %02d:00 - %02d:59: %3d %s\n", hour, hour, count, bar(count))
	}
	fmt.Println()
	return nil
}

func printTopEvents(store datastore.Interface) error {
	top, err := store.TopEvents(10)
	if err != nil {
		return err
	}

	fmt.Println("TOP 10 LOUDEST EVENTS")
	for i, event := range top {
		fmt.Printf("   %2d. %s %s (%s)\n", i+1, event.Date, event.Time, shortDay(event.Weekday))
		fmt.Printf("       Peak: %.2f dB - %s\n", event.PeakDB, event.ClipName)
	}
	fmt.Println()
	return nil
}

func printNightEvents(store datastore.Interface, total int64) error {
	night, err := store.NightEvents()
	if err != nil {
		return err
	}

	fmt.Println("LATE NIGHT EVENTS (11 PM - 6 AM)")
	if len(night) == 0 {
		fmt.Println("   No late night events recorded.")
		fmt.Println()
		return nil
	}

	fmt.Printf("   Total late night events: %d\n", len(night))
	fmt.Printf("   Percentage of all events: %.1f%%\n", float64(len(night))/float64(total)*100)
	fmt.Println("   Loudest night events:")
	for i, event := range night {
		if i >= 5 {
			break
		}
		fmt.Printf("   - %s %s - %.2f dB\n", event.Date, event.Time, event.PeakDB)
	}
	fmt.Println()
	return nil
}

// bar renders a simple histogram bar, capped so a noisy week does not wrap
// the terminal.
func bar(count int64) string {
	if count > 50 {
		count = 50
	}
	return strings.Repeat("#", int(count))
}

func shortDay(weekday string) string {
	if len(weekday) < 3 {
		return weekday
	}
	return weekday[:3]
}
