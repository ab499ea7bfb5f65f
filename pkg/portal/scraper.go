// Copyright (c) 2024 Adam Wyatt
//
// This software is licensed under the MIT License.
// See the LICENSE file in the root of the repository for details.

package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"RoomBooker/pkg/session"
	"RoomBooker/pkg/shared"
	"RoomBooker/pkg/slots"

	"github.com/rs/zerolog"
)

// Scraper reads the availability grid.
type Scraper struct {
	session session.Session
	config  Config
	logger  zerolog.Logger
}

func NewScraper(sess session.Session, cfg Config, logger zerolog.Logger) *Scraper {
	return &Scraper{session: sess, config: cfg, logger: logger}
}

func (s *Scraper) Login(ctx context.Context, cred shared.Credential) error {
	return login(ctx, s.session, s.config, cred)
}

func (s *Scraper) Navigate(ctx context.Context) error {
	return navigate(ctx, s.session, s.config, s.logger)
}

// Labels returns the title of every slot on the grid marked available.
func (s *Scraper) Labels(_ context.Context) ([]string, error) {
	elements, err := s.session.FindElements(session.ByCSS(slotCSS).WithTitle(slots.AvailableMarker))
	if err != nil {
		return nil, fmt.Errorf("find slots: %w", err)
	}

	var labels []string
	for _, el := range elements {
		title, ok := el.Attr("title")
		title = strings.TrimSpace(title)
		if !ok || title == "" {
			continue
		}
		labels = append(labels, title)
	}
	s.logger.Debug().Int("count", len(labels)).Msg("Collected slot labels")
	return labels, nil
}

// Schedule scrapes the grid into a per-resource schedule. Labels that do
// not parse are logged and skipped.
func (s *Scraper) Schedule(ctx context.Context, loc *time.Location) (*slots.Schedule, error) {
	labels, err := s.Labels(ctx)
	if err != nil {
		return nil, err
	}

	parsed, errs := slots.ParseLabels(labels, loc)
	for _, perr := range errs {
		s.logger.Warn().Err(perr).Msg("Skipping slot label")
	}

	schedule := slots.BuildSchedule(parsed)
	s.logger.Info().
		Int("resources", schedule.Len()).
		Int("slots", schedule.Count()).
		Int("skipped", len(errs)).
		Msg("Scraped availability")
	return schedule, nil
}

// Scrape logs in with cred, opens the grid and returns its schedule.
func (s *Scraper) Scrape(ctx context.Context, cred shared.Credential, loc *time.Location) (*slots.Schedule, error) {
	if err := s.Login(ctx, cred); err != nil {
		return nil, err
	}
	if err := s.Navigate(ctx); err != nil {
		return nil, err
	}
	return s.Schedule(ctx, loc)
}
