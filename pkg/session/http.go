// Copyright (c) 2024 Adam Wyatt
//
// This software is licensed under the MIT License.
// See the LICENSE file in the root of the repository for details.

package session

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/rs/zerolog"
)

const (
	defaultWait         = 5 * time.Second
	defaultPollInterval = 250 * time.Millisecond
)

// Options configures an HTTPSession.
type Options struct {
	Profile        Profile
	RequestTimeout time.Duration
	PollInterval   time.Duration
	DefaultWait    time.Duration
	// Delay between requests to the same host.
	Delay  time.Duration
	Logger *zerolog.Logger
}

type page struct {
	url    *url.URL
	method string
	body   []byte
	doc    *goquery.Document
}

// HTTPSession drives server-rendered pages over plain HTTP with a cookie
// jar. Scripts are not run, so script-only links and ExecuteScript report
// ErrUnsupported.
type HTTPSession struct {
	collector   *colly.Collector
	profile     Profile
	poll        time.Duration
	defaultWait time.Duration
	logger      zerolog.Logger

	page *page
	// Typed and selected values per form index, applied on submit.
	// An empty value list drops the field.
	pending map[int]url.Values
	closed  bool
}

var _ Session = (*HTTPSession)(nil)

// NewHTTPSession creates a session with its own cookie jar.
func NewHTTPSession(opts Options) (*HTTPSession, error) {
	profile := opts.Profile
	if profile.UserAgent == "" {
		profile = PickProfile(nil, nil)
	}

	c := colly.NewCollector(
		colly.UserAgent(profile.UserAgent),
		colly.AllowURLRevisit(),
	)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c.SetCookieJar(jar)

	if opts.RequestTimeout > 0 {
		c.SetRequestTimeout(opts.RequestTimeout)
	}

	// Implement rate limiting
	if opts.Delay > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       opts.Delay,
		}); err != nil {
			return nil, fmt.Errorf("set rate limit: %w", err)
		}
	}

	s := &HTTPSession{
		collector:   c,
		profile:     profile,
		poll:        opts.PollInterval,
		defaultWait: opts.DefaultWait,
		logger:      zerolog.Nop(),
		pending:     make(map[int]url.Values),
	}
	if s.poll <= 0 {
		s.poll = defaultPollInterval
	}
	if s.defaultWait <= 0 {
		s.defaultWait = defaultWait
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	return s, nil
}

// NewHTTPFactory returns a Factory that opens HTTP sessions, each with a
// profile drawn from pool.
func NewHTTPFactory(opts Options, pool []Profile) Factory {
	return func() (Session, error) {
		o := opts
		if o.Profile.UserAgent == "" {
			o.Profile = PickProfile(pool, nil)
		}
		return NewHTTPSession(o)
	}
}

// Profile returns the fingerprint this session presents.
func (s *HTTPSession) Profile() Profile { return s.profile }

// URL returns the address of the current page.
func (s *HTTPSession) URL() string {
	if s.page == nil {
		return ""
	}
	return s.page.url.String()
}

func (s *HTTPSession) Load(ctx context.Context, rawURL string) error {
	return s.fetch(ctx, http.MethodGet, rawURL, nil)
}

func (s *HTTPSession) fetch(ctx context.Context, method, target string, form url.Values) error {
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var resp *colly.Response
	c := s.collector.Clone()
	c.OnRequest(func(r *colly.Request) {
		if s.profile.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", s.profile.AcceptLanguage)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		resp = r
	})

	var err error
	if method == http.MethodPost {
		hdr := http.Header{}
		hdr.Set("Content-Type", "application/x-www-form-urlencoded")
		err = c.Request(http.MethodPost, target, strings.NewReader(form.Encode()), nil, hdr)
	} else {
		err = c.Visit(target)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	if resp == nil {
		return fmt.Errorf("%s %s: no response", method, target)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return fmt.Errorf("parse %s: %w", target, err)
	}

	s.page = &page{url: resp.Request.URL, method: method, body: resp.Body, doc: doc}
	s.pending = make(map[int]url.Values)

	s.logger.Debug().
		Str("method", method).
		Str("url", resp.Request.URL.String()).
		Int("status", resp.StatusCode).
		Msg("Loaded page")
	return nil
}

func (s *HTTPSession) reload(ctx context.Context) error {
	return s.fetch(ctx, http.MethodGet, s.page.url.String(), nil)
}

func (s *HTTPSession) find(loc Locator) (*goquery.Selection, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.page == nil {
		return nil, ErrNoPage
	}

	sel := s.page.doc.Find(loc.CSS)
	if loc.Title == "" && loc.TitlePrefix == "" && loc.Text == "" {
		return sel, nil
	}

	title := strings.ToLower(loc.Title)
	prefix := strings.ToLower(loc.TitlePrefix)
	text := strings.ToLower(loc.Text)
	return sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
		attr := strings.ToLower(el.AttrOr("title", ""))
		if title != "" && !strings.Contains(attr, title) {
			return false
		}
		if prefix != "" && !strings.HasPrefix(attr, prefix) {
			return false
		}
		if text != "" && !strings.Contains(strings.ToLower(el.Text()), text) {
			return false
		}
		return true
	}), nil
}

func (s *HTTPSession) first(loc Locator) (*goquery.Selection, error) {
	sel, err := s.find(loc)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, &ElementError{Locator: loc, Err: ErrElementNotFound}
	}
	return sel.First(), nil
}

func clickable(sel *goquery.Selection) bool {
	if _, disabled := sel.Attr("disabled"); disabled {
		return false
	}
	return !sel.HasClass("disabled")
}

// WaitForElement returns the first element matching loc, re-fetching the
// current page every poll interval until it appears or timeout elapses.
// Pages reached by POST are checked but never re-fetched.
func (s *HTTPSession) WaitForElement(ctx context.Context, loc Locator, timeout time.Duration, cond Condition) (Element, error) {
	if timeout <= 0 {
		timeout = s.defaultWait
	}
	deadline := time.Now().Add(timeout)

	for {
		sel, err := s.find(loc)
		if err != nil {
			return nil, err
		}
		var match *goquery.Selection
		sel.EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if cond == Clickable && !clickable(el) {
				return true
			}
			match = el
			return false
		})
		if match != nil {
			return element{sel: match}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.logger.Debug().Str("locator", loc.String()).Dur("timeout", timeout).Msg("Timeout waiting for element")
			return nil, &ElementError{Locator: loc, Timeout: timeout, Err: ErrElementNotFound}
		}

		wait := s.poll
		if remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if s.page.method == http.MethodGet {
			if err := s.reload(ctx); err != nil {
				s.logger.Debug().Err(err).Msg("Reload while waiting failed")
			}
		}
	}
}

func (s *HTTPSession) FindElements(loc Locator) ([]Element, error) {
	sel, err := s.find(loc)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, el *goquery.Selection) {
		out = append(out, element{sel: el})
	})
	return out, nil
}

// Type sets the value of a named field. It is sent when the owning form is
// submitted.
func (s *HTTPSession) Type(_ context.Context, loc Locator, text string) error {
	el, err := s.first(loc)
	if err != nil {
		return err
	}
	name := el.AttrOr("name", "")
	if name == "" {
		return fmt.Errorf("%s: field has no name: %w", loc, ErrUnsupported)
	}
	s.setPending(el, name, []string{text})
	return nil
}

// Submit submits the form that owns the located element.
func (s *HTTPSession) Submit(ctx context.Context, loc Locator) error {
	el, err := s.first(loc)
	if err != nil {
		return err
	}
	form := el.Closest("form")
	if form.Length() == 0 {
		return &ElementError{Locator: loc, Err: fmt.Errorf("no enclosing form: %w", ErrElementNotFound)}
	}
	return s.submitForm(ctx, form, nil)
}

// SelectDropdown picks the option whose visible text equals visibleText and
// reloads the page with the new value, since the portal redraws its grid on
// every change.
func (s *HTTPSession) SelectDropdown(ctx context.Context, loc Locator, visibleText string) error {
	el, err := s.first(loc)
	if err != nil {
		return err
	}
	if goquery.NodeName(el) != "select" {
		return fmt.Errorf("%s is not a select: %w", loc, ErrUnsupported)
	}
	name := el.AttrOr("name", "")
	if name == "" {
		return fmt.Errorf("%s: select has no name: %w", loc, ErrUnsupported)
	}

	var (
		value string
		found bool
	)
	el.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		if strings.TrimSpace(opt.Text()) != visibleText {
			return true
		}
		value, found = optionValue(opt), true
		return false
	})
	if !found {
		return fmt.Errorf("%s: %q: %w", loc, visibleText, ErrOptionNotFound)
	}

	if form := el.Closest("form"); form.Length() > 0 {
		s.setPending(el, name, []string{value})
		return s.submitForm(ctx, form, nil)
	}

	u := *s.page.url
	q := u.Query()
	q.Set(name, value)
	u.RawQuery = q.Encode()
	return s.fetch(ctx, http.MethodGet, u.String(), nil)
}

// Click follows links, submits forms through their buttons and toggles
// checkboxes.
func (s *HTTPSession) Click(ctx context.Context, loc Locator) error {
	el, err := s.first(loc)
	if err != nil {
		return err
	}

	switch goquery.NodeName(el) {
	case "a":
		href := strings.TrimSpace(el.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			href = el.AttrOr("data-href", "")
		}
		if href == "" {
			return fmt.Errorf("%s: script-driven link: %w", loc, ErrUnsupported)
		}
		return s.fetch(ctx, http.MethodGet, s.resolve(href), nil)

	case "button", "input":
		kind := strings.ToLower(el.AttrOr("type", "submit"))
		name := el.AttrOr("name", "")

		switch kind {
		case "checkbox":
			if name == "" {
				return fmt.Errorf("%s: checkbox has no name: %w", loc, ErrUnsupported)
			}
			if s.checked(el, name) {
				s.setPending(el, name, nil)
			} else {
				s.setPending(el, name, []string{el.AttrOr("value", "on")})
			}
			return nil
		case "submit", "image", "button":
		default:
			return fmt.Errorf("%s: %s input: %w", loc, kind, ErrUnsupported)
		}

		form := el.Closest("form")
		if form.Length() == 0 {
			if href := el.AttrOr("data-href", ""); href != "" {
				return s.fetch(ctx, http.MethodGet, s.resolve(href), nil)
			}
			return fmt.Errorf("%s: button outside a form: %w", loc, ErrUnsupported)
		}
		extra := url.Values{}
		if name != "" {
			extra.Set(name, el.AttrOr("value", ""))
		}
		return s.submitForm(ctx, form, extra)
	}

	if href := el.AttrOr("data-href", ""); href != "" {
		return s.fetch(ctx, http.MethodGet, s.resolve(href), nil)
	}
	return fmt.Errorf("%s: %w", loc, ErrUnsupported)
}

func (s *HTTPSession) ExecuteScript(_ context.Context, _ string) error {
	if s.closed {
		return ErrClosed
	}
	return fmt.Errorf("execute script: %w", ErrUnsupported)
}

// Snapshot returns the HTML of the current page.
func (s *HTTPSession) Snapshot() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.page == nil {
		return nil, ErrNoPage
	}
	out := make([]byte, len(s.page.body))
	copy(out, s.page.body)
	return out, nil
}

func (s *HTTPSession) Close() error {
	s.closed = true
	s.page = nil
	s.pending = nil
	return nil
}

func (s *HTTPSession) resolve(ref string) string {
	u, err := s.page.url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func (s *HTTPSession) formKey(el *goquery.Selection) int {
	return s.page.doc.Find("form").IndexOfSelection(el.Closest("form"))
}

func (s *HTTPSession) setPending(el *goquery.Selection, name string, values []string) {
	key := s.formKey(el)
	if s.pending[key] == nil {
		s.pending[key] = url.Values{}
	}
	s.pending[key][name] = values
}

func (s *HTTPSession) checked(el *goquery.Selection, name string) bool {
	if v, ok := s.pending[s.formKey(el)][name]; ok {
		return len(v) > 0
	}
	_, on := el.Attr("checked")
	return on
}

func (s *HTTPSession) submitForm(ctx context.Context, form *goquery.Selection, extra url.Values) error {
	values := formValues(form)
	for name, v := range s.pending[s.formKey(form)] {
		if len(v) == 0 {
			values.Del(name)
			continue
		}
		values[name] = v
	}
	for name, v := range extra {
		values[name] = v
	}

	action := s.page.url.String()
	if a := strings.TrimSpace(form.AttrOr("action", "")); a != "" {
		action = s.resolve(a)
	}

	if strings.EqualFold(strings.TrimSpace(form.AttrOr("method", "get")), http.MethodPost) {
		return s.fetch(ctx, http.MethodPost, action, values)
	}

	u, err := url.Parse(action)
	if err != nil {
		return fmt.Errorf("form action %q: %w", action, err)
	}
	u.RawQuery = values.Encode()
	return s.fetch(ctx, http.MethodGet, u.String(), nil)
}

type element struct {
	sel *goquery.Selection
}

func (e element) Attr(name string) (string, bool) { return e.sel.Attr(name) }

func (e element) Text() string { return strings.TrimSpace(e.sel.Text()) }
