/*
Sets up the RoomBooker run configuration for the user.
Collects information such as:
- Portal login URL
- Location and resource category
- Preferred resource
- Booking window
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"RoomBooker/pkg/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var overwrite bool

// Checks if the config file exists
func ConfigExists() bool {
	_, err := os.Stat(configFile)
	return err == nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the RoomBooker run configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a new run configuration interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Command to show the config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the run configuration and configured accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout())
	},
}

// Initialises the command and adds the -overwrite flag
func init() {
	rootCmd.AddCommand(configCmd)
	configInitCmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "Overwrite the existing config")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p prompter) ask(question, fallback string) (string, error) {
	if fallback != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, fallback)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && answer != "") {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

// askRequired repeats the question until valid accepts the answer.
func (p prompter) askRequired(question string, valid func(string) error) (string, error) {
	for {
		answer, err := p.ask(question, "")
		if err != nil {
			return "", err
		}
		if answer == "" {
			fmt.Fprintln(p.out, "This value cannot be empty. Please try again.")
			continue
		}
		if valid != nil {
			if err := valid(answer); err != nil {
				fmt.Fprintln(p.out, err)
				continue
			}
		}
		return answer, nil
	}
}

func runConfigInit(in io.Reader, out io.Writer) error {
	if ConfigExists() && !overwrite {
		return fmt.Errorf("%s already exists, use --overwrite to replace it", configFile)
	}

	p := prompter{reader: bufio.NewReader(in), out: out}
	cfg := config.Default()
	var err error

	fmt.Fprintln(out, "Please provide the booking details.")
	if cfg.LoginURL, err = p.askRequired("Portal login URL", nil); err != nil {
		return err
	}
	if cfg.Location, err = p.askRequired("Location (as shown in the location list)", nil); err != nil {
		return err
	}
	if cfg.ResourceCategory, err = p.askRequired("Resource category (as shown in the category list)", nil); err != nil {
		return err
	}
	if cfg.PreferredResourceID, err = p.ask("Preferred resource (optional)", ""); err != nil {
		return err
	}

	clock := func(field string) func(string) error {
		return func(s string) error {
			_, _, err := config.ParseClock(field, s)
			return err
		}
	}
	if cfg.Times.Start, err = p.askRequired("Window start (HHMM, 24-hour)", clock("times.start")); err != nil {
		return err
	}
	if cfg.Times.End, err = p.askRequired("Window end (HHMM, 24-hour)", clock("times.end")); err != nil {
		return err
	}
	if cfg.OutputFolder, err = p.ask("Output folder", cfg.OutputFolder); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(configFile, cfg); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", configFile)
	fmt.Fprintf(out, "Add your accounts as CREDENTIALS='{\"username\": \"password\"}' in %s\n", config.DefaultEnvFile)
	return nil
}

func runConfigShow(out io.Writer) error {
	if !ConfigExists() {
		fmt.Fprintln(out, "No config file found. Please create one using `RoomBooker config init`.")
		return nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(" Configuration "))
	fmt.Fprintf(out, "%s\n", data)

	if err := config.LoadEnv(envFile); err != nil {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return nil
	}
	creds, err := config.CredentialsFromEnv()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return nil
	}

	fmt.Fprintln(out, "Configured accounts (in booking order):")
	for i, c := range creds {
		fmt.Fprintf(out, "%d) %s\n", i+1, c.Username)
	}
	return nil
}
