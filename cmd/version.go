package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X RoomBooker/cmd.version=..." at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			w := out
			if w == nil {
				w = cmd.OutOrStdout()
			}
			printVersion(w)
		},
	}

	return cmd
}

func printVersion(out io.Writer) {
	const format = "%-10s %s\n"

	fmt.Fprintf(out, format, "Version:", version)
	fmt.Fprintf(out, format, "Commit:", commit)
	fmt.Fprintf(out, format, "Date:", date)
}

func init() {
	rootCmd.AddCommand(versionCmd(nil))
}
