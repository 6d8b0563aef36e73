package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Operation failures are classified into two conditions so callers can tell
// "the element never appeared" from "the engine gave up waiting".
var (
	ErrNotFound = errors.New("element not found")
	ErrTimeout  = errors.New("operation timed out")
)

// DefaultTimeout bounds every blocking primitive; no operation blocks
// indefinitely.
const DefaultTimeout = 10 * time.Second

// clickRetryBackoff is the pause before the single retry of a click whose
// target was transiently overlapped by another element.
const clickRetryBackoff = 500 * time.Millisecond

// Session wraps one page of the automation engine with timeout-bounded
// primitives. It is exclusively owned by the run goroutine.
type Session struct {
	page    playwright.Page
	timeout time.Duration
}

func NewSession(page playwright.Page) *Session {
	return &Session{page: page, timeout: DefaultTimeout}
}

// Page exposes the underlying engine page for adapter-specific locator work.
func (s *Session) Page() playwright.Page {
	return s.page
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// Navigate loads url and waits for the DOM to be ready.
func (s *Session) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(3 * s.timeout),
	})
	if err != nil {
		return classify(fmt.Errorf("navigating to %s: %w", url, err))
	}
	return nil
}

// WaitVisible blocks until selector has a visible match.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	return classify(err)
}

// WaitHidden blocks until selector has no visible match.
func (s *Session) WaitHidden(selector string, timeout time.Duration) error {
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: ms(timeout),
	})
	return classify(err)
}

// Click clicks the first match of selector. A click intercepted by a
// transient overlay is retried once after a short backoff; a second failure
// is surfaced to the caller.
func (s *Session) Click(selector string) error {
	loc := s.page.Locator(selector).First()
	err := loc.Click(playwright.LocatorClickOptions{Timeout: ms(s.timeout)})
	if err != nil && isIntercepted(err) {
		time.Sleep(clickRetryBackoff)
		err = loc.Click(playwright.LocatorClickOptions{Timeout: ms(s.timeout)})
	}
	return classify(err)
}

// ClickIfVisible clicks selector when present and reports whether it did.
// Used for cookie banners and other optional overlays.
func (s *Session) ClickIfVisible(selector string, timeout time.Duration) bool {
	loc := s.page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	}); err != nil {
		return false
	}
	return loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)}) == nil
}

// Text reads the trimmed text content of the first match of selector.
func (s *Session) Text(selector string) (string, error) {
	loc := s.page.Locator(selector).First()
	txt, err := loc.TextContent(playwright.LocatorTextContentOptions{Timeout: ms(s.timeout)})
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(txt), nil
}

// Attribute reads an attribute of the first match of selector.
func (s *Session) Attribute(selector, name string) (string, error) {
	loc := s.page.Locator(selector).First()
	val, err := loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: ms(s.timeout)})
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(val), nil
}

// Count returns the number of current matches of selector.
func (s *Session) Count(selector string) (int, error) {
	n, err := s.page.Locator(selector).Count()
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// All returns a locator handle per current match of selector.
func (s *Session) All(selector string) ([]playwright.Locator, error) {
	handles, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, classify(err)
	}
	return handles, nil
}

// ScrollIntoView scrolls the first match of selector into the viewport.
func (s *Session) ScrollIntoView(selector string) error {
	err := s.page.Locator(selector).First().ScrollIntoViewIfNeeded(
		playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: ms(s.timeout)})
	return classify(err)
}

// Fill types value into the first match of selector, replacing its content.
func (s *Session) Fill(selector, value string) error {
	err := s.page.Locator(selector).First().Fill(value,
		playwright.LocatorFillOptions{Timeout: ms(s.timeout)})
	return classify(err)
}

// Press sends one key press to the first match of selector.
func (s *Session) Press(selector, key string) error {
	err := s.page.Locator(selector).First().Press(key,
		playwright.LocatorPressOptions{Timeout: ms(s.timeout)})
	return classify(err)
}

// SafeText reads a locator's trimmed text, mapping any failure or empty
// content to the N/A convention adapters use for optional fields.
func SafeText(loc playwright.Locator, timeout time.Duration) string {
	txt, err := loc.TextContent(playwright.LocatorTextContentOptions{Timeout: ms(timeout)})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(txt)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "Timeout") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such element") ||
		strings.Contains(msg, "strict mode violation") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func isIntercepted(err error) bool {
	return err != nil && strings.Contains(err.Error(), "intercepts pointer events")
}
