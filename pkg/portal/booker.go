package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"RoomBooker/pkg/session"
	"RoomBooker/pkg/shared"
	"RoomBooker/pkg/slots"

	"github.com/rs/zerolog"
)

// Booker reserves slots on the grid.
type Booker struct {
	session session.Session
	config  Config
	logger  zerolog.Logger
}

func NewBooker(sess session.Session, cfg Config, logger zerolog.Logger) *Booker {
	return &Booker{session: sess, config: cfg, logger: logger}
}

func (b *Booker) Login(ctx context.Context, cred shared.Credential) error {
	return login(ctx, b.session, b.config, cred)
}

func (b *Booker) Navigate(ctx context.Context) error {
	return navigate(ctx, b.session, b.config, b.logger)
}

// BookAt books resource at start. It returns false with a nil error when
// the form went through but no confirmation showed up.
func (b *Booker) BookAt(ctx context.Context, resource string, start time.Time) (bool, error) {
	label := slots.FormatLabel(resource, start)
	return b.submit(ctx, session.ByCSS(slotCSS).WithTitlePrefix(label))
}

// BookEarliest books the first available slot on the grid whose label
// mentions match, e.g. a resource name.
func (b *Booker) BookEarliest(ctx context.Context, match string) (bool, error) {
	elements, err := b.session.FindElements(session.ByCSS(slotCSS).WithTitle(slots.AvailableMarker))
	if err != nil {
		return false, fmt.Errorf("find slots: %w", err)
	}

	match = strings.ToLower(match)
	for _, el := range elements {
		title, _ := el.Attr("title")
		if strings.Contains(strings.ToLower(title), match) {
			return b.submit(ctx, session.ByCSS(slotCSS).WithTitlePrefix(title))
		}
	}
	return false, fmt.Errorf("%w: no available %q slot", ErrSlotNotFound, match)
}

func (b *Booker) submit(ctx context.Context, slot session.Locator) (bool, error) {
	if _, err := b.session.WaitForElement(ctx, slot, b.config.wait(), session.Present); err != nil {
		if errors.Is(err, session.ErrElementNotFound) {
			return false, fmt.Errorf("%w: %q: %w", ErrSlotNotFound, slot.TitlePrefix, err)
		}
		return false, err
	}
	if err := b.session.Click(ctx, slot); err != nil {
		return false, fmt.Errorf("pick slot: %w", err)
	}

	for _, id := range []string{submitTimesID, termsAcceptID, formSubmitID} {
		if err := clickButton(ctx, b.session, b.config, session.ByID(id)); err != nil {
			return false, fmt.Errorf("click %s: %w", id, err)
		}
	}

	_, err := b.session.WaitForElement(ctx, session.ByText(confirmationText), b.config.confirmWait(), session.Present)
	switch {
	case err == nil:
		b.logger.Debug().Str("slot", slot.TitlePrefix).Msg("Booking confirmed")
		return true, nil
	case errors.Is(err, session.ErrElementNotFound):
		return false, nil
	default:
		return false, err
	}
}
