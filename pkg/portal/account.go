package portal

import (
	"context"
	"fmt"
	"time"

	"RoomBooker/pkg/booking"
	"RoomBooker/pkg/session"
	"RoomBooker/pkg/shared"

	"github.com/rs/zerolog"
)

// Capturer stores evidence of a confirmed booking.
type Capturer interface {
	Capture(sess session.Session, username string) (string, error)
}

// AccountBooker books with a fresh session per account.
type AccountBooker struct {
	NewSession session.Factory
	Config     Config
	Capturer   Capturer
	Logger     zerolog.Logger
}

var _ booking.Booker = (*AccountBooker)(nil)

func (a *AccountBooker) Book(ctx context.Context, cred shared.Credential, resource string, start time.Time) (bool, error) {
	return a.book(ctx, cred, func(b *Booker) (bool, error) {
		return b.BookAt(ctx, resource, start)
	})
}

// BookEarliest books the first available slot whose label mentions match
// for cred. An empty match takes the first available slot of any resource.
func (a *AccountBooker) BookEarliest(ctx context.Context, cred shared.Credential, match string) (bool, error) {
	return a.book(ctx, cred, func(b *Booker) (bool, error) {
		return b.BookEarliest(ctx, match)
	})
}

func (a *AccountBooker) book(ctx context.Context, cred shared.Credential, pick func(*Booker) (bool, error)) (bool, error) {
	sess, err := a.NewSession()
	if err != nil {
		return false, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	log := a.Logger.With().Str("username", cred.Username).Logger()
	booker := NewBooker(sess, a.Config, log)

	if err := booker.Login(ctx, cred); err != nil {
		return false, err
	}
	if err := booker.Navigate(ctx); err != nil {
		return false, err
	}

	ok, err := pick(booker)
	if err != nil || !ok {
		return ok, err
	}

	if a.Capturer != nil {
		path, err := a.Capturer.Capture(sess, cred.Username)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to capture confirmation page")
		} else {
			log.Info().Str("path", path).Msg("Saved confirmation page")
		}
	}
	return true, nil
}
