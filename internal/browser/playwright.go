// Package browser owns the single automation-engine connection and exposes
// the narrow Session contract the source adapters drive.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Manager owns the Playwright runtime and the one browser instance shared by
// every source adapter. Sources run sequentially, so one page is enough.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewManager starts Playwright and launches a Chromium instance.
func NewManager(headless bool) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Manager{pw: pw, browser: b}, nil
}

// NewSession opens a fresh browser context and page.
func (m *Manager) NewSession() (*Session, error) {
	ctx, err := m.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	return NewSession(page), nil
}

// Close shuts the browser and the Playwright runtime down.
func (m *Manager) Close() error {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			return err
		}
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}
