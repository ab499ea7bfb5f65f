package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RoomBooker/pkg/booking"
	"RoomBooker/pkg/config"
	"RoomBooker/pkg/portal"
	"RoomBooker/pkg/record"
	"RoomBooker/pkg/session"
	"RoomBooker/pkg/shared"
	"RoomBooker/pkg/slots"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configFile  string
	envFile     string
	verboseMode bool
	plainMode   bool
	pickMode    bool
	dryRun      bool
	earliest    bool
	metricsFile string
)

// logger is replaced by setupLogging before any command runs.
var logger = zerolog.Nop()

var debugLog *os.File

// rootCmd scrapes the grid and books the chosen resource for every account.
var rootCmd = &cobra.Command{
	Use:   "RoomBooker",
	Short: "A CLI tool for booking library rooms across several accounts",
	Long: `RoomBooker logs in to the library reservation portal, finds a resource
that is free inside the configured window and books consecutive slots of it,
one account after another, until the window closes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, f, err := setupLogging(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger, debugLog = l, f
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if debugLog != nil {
			debugLog.Close()
		}
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBooking(cmd.Context(), cmd.OutOrStdout())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to the YAML run configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file holding CREDENTIALS (default conf/.env)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Write debug logs to the debug log file")
	rootCmd.PersistentFlags().BoolVar(&plainMode, "plain", false, "Plain output without spinners or interactive views")

	rootCmd.Flags().BoolVarP(&pickMode, "pick", "p", false, "Choose the resource from a list instead of the preferred one")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Scrape and select a resource without booking")
	rootCmd.Flags().BoolVar(&earliest, "earliest", false, "Book the earliest free slot of the preferred resource for each account, ignoring the window")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write booking counters to this Prometheus textfile")
}

// job is everything a run needs, checked before any session is opened.
type job struct {
	cfg        *config.Config
	creds      []shared.Credential
	start, end time.Time
}

func loadJob() (*job, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	creds, err := config.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	start, end, err := cfg.Window(time.Now())
	if err != nil {
		return nil, err
	}
	return &job{cfg: cfg, creds: creds, start: start, end: end}, nil
}

func (j *job) portalConfig() portal.Config {
	return portal.Config{
		LoginURL:       j.cfg.LoginURL,
		Location:       j.cfg.Location,
		Category:       j.cfg.ResourceCategory,
		WaitTimeout:    j.cfg.WaitTimeout.Duration,
		ConfirmTimeout: j.cfg.ConfirmTimeout.Duration,
	}
}

func (j *job) sessions() session.Factory {
	pool := session.DefaultProfiles()
	if len(j.cfg.UserAgents) > 0 {
		pool = session.ProfilesFromUserAgents(j.cfg.UserAgents)
	}
	l := logger
	return session.NewHTTPFactory(session.Options{
		DefaultWait: j.cfg.WaitTimeout.Duration,
		Delay:       j.cfg.RequestDelay.Duration,
		Logger:      &l,
	}, pool)
}

// scanPortal signs in with the first account and reads the grid.
func (j *job) scanPortal(ctx context.Context) (*slots.Schedule, error) {
	var schedule *slots.Schedule
	err := withSpinner(ctx, "Scanning the booking grid...", func(ctx context.Context) error {
		sess, err := j.sessions()()
		if err != nil {
			return err
		}
		defer sess.Close()

		s, err := portal.NewScraper(sess, j.portalConfig(), logger).Scrape(ctx, j.creds[0], j.cfg.Zone())
		schedule = s
		return err
	})
	return schedule, err
}

func runBooking(ctx context.Context, out io.Writer) error {
	j, err := loadJob()
	if err != nil {
		return err
	}
	logger.Info().
		Str("location", j.cfg.Location).
		Str("category", j.cfg.ResourceCategory).
		Time("start", j.start).
		Time("end", j.end).
		Int("accounts", len(j.creds)).
		Msg("Starting booking run")

	if earliest {
		return runEarliest(ctx, j, out)
	}

	schedule, err := j.scanPortal(ctx)
	if err != nil {
		return fmt.Errorf("scan booking grid: %w", err)
	}

	available := schedule.AvailableBetween(j.start, j.end)
	if len(available) == 0 {
		fmt.Fprintln(out, errorStyle.Render("No available resources"))
		return nil
	}

	resource, ok, err := chooseResource(available, j.cfg.PreferredResourceID)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "No resource selected.")
		return nil
	}
	fmt.Fprintf(out, "Selected resource: %s\n", successStyle.Render(resource))

	if dryRun {
		fmt.Fprintf(out, "Dry run: would book %s from %s to %s for %d accounts\n",
			resource, j.start.Format("15:04"), j.end.Format("15:04"), len(j.creds))
		return nil
	}

	metrics := booking.NewMetrics()
	scheduler := booking.NewScheduler(j.accountBooker(), record.NewLog(j.cfg.OutputFolder))
	scheduler.Increment = j.cfg.Increment.Duration
	scheduler.Metrics = metrics
	scheduler.Logger = logger

	req := booking.Request{
		Start:     j.start,
		End:       j.end,
		Location:  j.cfg.Location,
		Category:  j.cfg.ResourceCategory,
		Preferred: j.cfg.PreferredResourceID,
	}
	run := withProgress(ctx, len(j.creds), scheduler, func(ctx context.Context) *booking.Run {
		return scheduler.Run(ctx, req, resource, j.creds)
	})

	writeMetrics(metrics)

	printSummary(out, run)
	if run.State == booking.StateCancelled {
		return context.Canceled
	}
	return nil
}

func (j *job) accountBooker() *portal.AccountBooker {
	return &portal.AccountBooker{
		NewSession: j.sessions(),
		Config:     j.portalConfig(),
		Capturer:   &record.Snapshots{Folder: j.cfg.OutputFolder},
		Logger:     logger,
	}
}

// runEarliest books, for each account in turn, the first free slot on the
// grid that mentions the preferred resource (any resource when none is
// set). Nothing is scraped beforehand, so the window does not apply.
func runEarliest(ctx context.Context, j *job, out io.Writer) error {
	match := j.cfg.PreferredResourceID
	target := match
	if target == "" {
		target = "any resource"
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run: would book the earliest %s slot for %d accounts\n", target, len(j.creds))
		return nil
	}

	metrics := booking.NewMetrics()
	booker := j.accountBooker()

	fmt.Fprintf(out, "\n%s\n", titleStyle.Render(" Earliest "+target+" "))
	for i, cred := range j.creds {
		if ctx.Err() != nil {
			for _, skipped := range j.creds[i:] {
				fmt.Fprintf(out, "  %s %s was not used\n", controlStyle.Render("-"), skipped.Username)
			}
			writeMetrics(metrics)
			return context.Canceled
		}

		ok, err := booker.BookEarliest(ctx, cred, match)
		metrics.Attempt(ok && err == nil)
		switch {
		case err != nil:
			logger.Error().Err(err).Str("username", cred.Username).Msg("Booking failed")
			fmt.Fprintf(out, "  %s %s could not book: %s\n", errorStyle.Render("✘"), cred.Username, err)
		case !ok:
			fmt.Fprintf(out, "  %s %s could not book: not confirmed\n", errorStyle.Render("✘"), cred.Username)
		default:
			fmt.Fprintf(out, "  %s %s booked the earliest %s slot\n", successStyle.Render("✔"), cred.Username, target)
		}
	}

	writeMetrics(metrics)
	return nil
}

func writeMetrics(metrics *booking.Metrics) {
	if metricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(metricsFile); err != nil {
		logger.Warn().Err(err).Str("path", metricsFile).Msg("Failed to write metrics")
	}
}

// chooseResource returns the preferred resource when it is available,
// otherwise the first one. With --pick the user chooses instead.
func chooseResource(available []string, preferred string) (string, bool, error) {
	if pickMode && !plainMode {
		return selectFromList("Select a resource", available, preferred)
	}
	resource, err := slots.Select(available, preferred)
	if err != nil {
		return "", false, err
	}
	return resource, true, nil
}

func printSummary(out io.Writer, run *booking.Run) {
	fmt.Fprintf(out, "\n%s\n", titleStyle.Render(" Booking summary "))
	for _, o := range run.Outcomes {
		slot := o.SlotStart.Format("Mon 02 Jan 15:04")
		if o.Success {
			fmt.Fprintf(out, "  %s %s booked %s at %s\n", successStyle.Render("✔"), o.Username, o.Resource, slot)
			continue
		}
		reason := "not confirmed"
		if o.Err != nil && !errors.Is(o.Err, booking.ErrNotConfirmed) {
			reason = o.Err.Error()
		}
		fmt.Fprintf(out, "  %s %s could not book %s at %s: %s\n", errorStyle.Render("✘"), o.Username, o.Resource, slot, reason)
	}

	switch run.State {
	case booking.StateWindowClosed:
		fmt.Fprintln(out, errorStyle.Render("Window closed"))
	case booking.StateCancelled:
		fmt.Fprintln(out, errorStyle.Render("Cancelled"))
	}
	for _, cred := range run.Skipped() {
		fmt.Fprintf(out, "  %s %s was not used\n", controlStyle.Render("-"), cred.Username)
	}
}

// withSpinner runs work behind a spinner unless output is plain.
func withSpinner(ctx context.Context, msg string, work func(context.Context) error) error {
	if plainMode {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(msg, cancel), tea.WithOutput(os.Stderr))
	done := make(chan error, 1)
	go func() {
		done <- work(ctx)
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		logger.Debug().Err(err).Msg("Spinner stopped")
	}
	return <-done
}

// withProgress drives the progress bar from scheduler outcomes.
func withProgress(ctx context.Context, total int, scheduler *booking.Scheduler, work func(context.Context) *booking.Run) *booking.Run {
	if plainMode || total == 0 {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newPB(total, cancel), tea.WithOutput(os.Stderr))
	attempted := 0
	scheduler.OnOutcome = func(shared.Outcome) {
		attempted++
		p.Send(pbMsg(attempted))
	}

	done := make(chan *booking.Run, 1)
	go func() {
		done <- work(ctx)
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		logger.Debug().Err(err).Msg("Progress bar stopped")
	}
	return <-done
}
