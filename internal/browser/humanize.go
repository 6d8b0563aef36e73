package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses for a random duration between min and max milliseconds.
// Listing sites throttle clients that page at machine speed.
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(rand.Intn(max-min)+min) * time.Millisecond)
}

// SmoothScroll scrolls the page the way a reader would, ending at the bottom
// to trigger lazy-loaded result blocks.
func SmoothScroll(page playwright.Page) {
	page.Mouse().Wheel(0, 500)
	RandomDelay(300, 800)
	page.Mouse().Wheel(0, -200)
	RandomDelay(300, 600)
	page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
