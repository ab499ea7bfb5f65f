package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RoomBooker/pkg/session"
	"RoomBooker/pkg/shared"

	"github.com/rs/zerolog"
)

// Element ids and selectors on the reservation portal.
const (
	usernameInputID  = "userNameInput"
	passwordInputID  = "passwordInput"
	locationSelectID = "lid"
	categorySelectID = "gid"
	submitTimesID    = "submit_times"
	termsAcceptID    = "terms_accept"
	formSubmitID     = "btn-form-submit"

	slotCSS          = "a.fc-timeline-event"
	confirmationText = "successfully booked"
	scrollScript     = "window.scrollTo(0, document.body.scrollHeight);"
)

const (
	DefaultWaitTimeout    = 5 * time.Second
	DefaultConfirmTimeout = 10 * time.Second
)

var (
	ErrLoginFieldsMissing = errors.New("login fields missing")
	ErrSlotNotFound       = errors.New("slot not found")
)

// Config is what both roles need to reach the booking grid.
type Config struct {
	LoginURL       string
	Location       string
	Category       string
	WaitTimeout    time.Duration
	ConfirmTimeout time.Duration
}

func (c Config) wait() time.Duration {
	if c.WaitTimeout <= 0 {
		return DefaultWaitTimeout
	}
	return c.WaitTimeout
}

func (c Config) confirmWait() time.Duration {
	if c.ConfirmTimeout <= 0 {
		return DefaultConfirmTimeout
	}
	return c.ConfirmTimeout
}

// login fills the username/password form and submits it. Both fields must
// be present; a portal that changed its markup fails here instead of
// carrying on without a session.
func login(ctx context.Context, sess session.Session, cfg Config, cred shared.Credential) error {
	if err := sess.Load(ctx, cfg.LoginURL); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	for _, id := range []string{usernameInputID, passwordInputID} {
		if _, err := sess.WaitForElement(ctx, session.ByID(id), cfg.wait(), session.Present); err != nil {
			return fmt.Errorf("%w: %w", ErrLoginFieldsMissing, err)
		}
	}

	if err := sess.Type(ctx, session.ByID(usernameInputID), cred.Username); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := sess.Type(ctx, session.ByID(passwordInputID), cred.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := sess.Submit(ctx, session.ByID(passwordInputID)); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	return nil
}

// navigate picks the location and resource category so the grid shows
// the wanted resources.
func navigate(ctx context.Context, sess session.Session, cfg Config, logger zerolog.Logger) error {
	if err := selectOption(ctx, sess, cfg, locationSelectID, cfg.Location); err != nil {
		return fmt.Errorf("select location: %w", err)
	}
	if err := selectOption(ctx, sess, cfg, categorySelectID, cfg.Category); err != nil {
		return fmt.Errorf("select resource category: %w", err)
	}

	// Only matters for sessions with a visible browser
	if err := sess.ExecuteScript(ctx, scrollScript); err != nil {
		logger.Debug().Err(err).Msg("Skipped scroll to bottom")
	}
	return nil
}

func selectOption(ctx context.Context, sess session.Session, cfg Config, id, option string) error {
	loc := session.ByID(id)
	if _, err := sess.WaitForElement(ctx, loc, cfg.wait(), session.Present); err != nil {
		return err
	}
	return sess.SelectDropdown(ctx, loc, option)
}

func clickButton(ctx context.Context, sess session.Session, cfg Config, loc session.Locator) error {
	if _, err := sess.WaitForElement(ctx, loc, cfg.wait(), session.Clickable); err != nil {
		return err
	}
	return sess.Click(ctx, loc)
}
