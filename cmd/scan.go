package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"RoomBooker/pkg/slots"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List every available slot on the booking grid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScan(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(ctx context.Context, out io.Writer) error {
	j, err := loadJob()
	if err != nil {
		return err
	}

	schedule, err := j.scanPortal(ctx)
	if err != nil {
		return fmt.Errorf("scan booking grid: %w", err)
	}

	lines := scheduleLines(schedule, j.start, j.end)
	if plainMode {
		if len(lines) == 0 {
			fmt.Fprintln(out, "No available timeslots")
		}
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
		return nil
	}

	_, err = tea.NewProgram(newPagerModel(lines)).Run()
	return err
}

// scheduleLines renders a header line per resource followed by its times.
// Times inside [start, end] are starred.
func scheduleLines(s *slots.Schedule, start, end time.Time) []string {
	var lines []string
	for _, resource := range s.Resources() {
		lines = append(lines, resource+":")
		for _, t := range s.Times(resource) {
			line := t.Format("Mon 02 Jan 3:04 pm")
			if !t.Before(start) && !t.After(end) {
				line += " *"
			}
			lines = append(lines, line)
		}
	}
	return lines
}
