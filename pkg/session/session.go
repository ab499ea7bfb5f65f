// Package session is the web session capability the scraper and booker
// roles drive: load a page, wait for elements, fill and submit forms.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrOptionNotFound  = errors.New("option not found")
	ErrUnsupported     = errors.New("not supported by this session")
	ErrNoPage          = errors.New("no page loaded")
	ErrClosed          = errors.New("session closed")
)

// Locator picks elements by CSS selector, optionally narrowed by their title
// attribute or text. All narrowing ignores case.
type Locator struct {
	CSS         string
	Title       string // title contains
	TitlePrefix string // title starts with
	Text        string // text contains
}

// ByID locates the element with the given id.
func ByID(id string) Locator { return Locator{CSS: "#" + id} }

// ByCSS locates elements matching a CSS selector.
func ByCSS(css string) Locator { return Locator{CSS: css} }

// ByText locates the page body when it contains text.
func ByText(text string) Locator { return Locator{CSS: "body", Text: text} }

// WithTitle narrows l to elements whose title contains sub.
func (l Locator) WithTitle(sub string) Locator {
	l.Title = sub
	return l
}

// WithTitlePrefix narrows l to elements whose title starts with prefix.
func (l Locator) WithTitlePrefix(prefix string) Locator {
	l.TitlePrefix = prefix
	return l
}

func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(l.CSS)
	if l.Title != "" {
		fmt.Fprintf(&b, " title~%q", l.Title)
	}
	if l.TitlePrefix != "" {
		fmt.Fprintf(&b, " title^%q", l.TitlePrefix)
	}
	if l.Text != "" {
		fmt.Fprintf(&b, " text~%q", l.Text)
	}
	return b.String()
}

// Condition is what WaitForElement waits for.
type Condition int

const (
	Present Condition = iota
	Clickable
)

// Element is a located node. Only attributes and text are exposed.
type Element interface {
	Attr(name string) (string, bool)
	Text() string
}

// ElementError reports an element that did not show up in time.
type ElementError struct {
	Locator Locator
	Timeout time.Duration
	Err     error
}

func (e *ElementError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s after %s: %v", e.Locator, e.Timeout, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Locator, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }

// Session is one browsing session with its own cookies.
type Session interface {
	Load(ctx context.Context, url string) error
	WaitForElement(ctx context.Context, loc Locator, timeout time.Duration, cond Condition) (Element, error)
	FindElements(loc Locator) ([]Element, error)
	Type(ctx context.Context, loc Locator, text string) error
	Submit(ctx context.Context, loc Locator) error
	SelectDropdown(ctx context.Context, loc Locator, visibleText string) error
	Click(ctx context.Context, loc Locator) error
	ExecuteScript(ctx context.Context, script string) error
	Snapshot() ([]byte, error)
	Close() error
}

// Factory opens a fresh session.
type Factory func() (Session, error)
