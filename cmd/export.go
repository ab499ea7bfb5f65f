package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"RoomBooker/pkg/config"
	"RoomBooker/pkg/record"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file.xlsx]",
	Short: "Export the booking log to an Excel workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := ""
		if len(args) == 1 {
			out = args[0]
		}
		return runExport(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(w io.Writer, out string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log := record.NewLog(cfg.OutputFolder)
	if out == "" {
		out = filepath.Join(cfg.OutputFolder, "booking_log.xlsx")
	}

	n, err := log.ExportXLSX(out)
	if err != nil {
		return fmt.Errorf("export %s: %w", log.Path, err)
	}
	fmt.Fprintf(w, "Exported %d bookings to %s\n", n, out)
	return nil
}
