package scraper

import (
	"context"
	"log"
)

// MaxPageCycles is the hard ceiling on paging cycles for any source. A site
// whose "no more results" signal silently disappears must not keep a run
// spinning forever.
const MaxPageCycles = 60

// Cycle describes one source's result-revealing loop in three steps.
type Cycle struct {
	// HasNext reports whether the control that reveals more results (a
	// "load more" button, a next-page link) is still present and usable.
	HasNext func() (bool, error)

	// Advance activates the control once.
	Advance func() error

	// Count returns the number of offers revealed so far.
	Count func() (int, error)
}

// LoadAll drives cycle until a terminal condition: the control is gone, an
// advance reveals nothing new, the context is cancelled, or maxCycles
// advances have been made. It returns the final revealed count. Advance
// failures are terminal for the loop, not for the source: whatever was
// revealed before the failure is kept.
func LoadAll(ctx context.Context, cycle Cycle, maxCycles int) (int, error) {
	if maxCycles <= 0 || maxCycles > MaxPageCycles {
		maxCycles = MaxPageCycles
	}

	prev, err := cycle.Count()
	if err != nil {
		return 0, err
	}

	for i := 0; i < maxCycles; i++ {
		if err := ctx.Err(); err != nil {
			return prev, err
		}

		more, err := cycle.HasNext()
		if err != nil || !more {
			return prev, nil
		}

		if err := cycle.Advance(); err != nil {
			log.Printf("pagination stopped after %d offers: %v", prev, err)
			return prev, nil
		}

		count, err := cycle.Count()
		if err != nil {
			return prev, nil
		}
		if count <= prev {
			// the control clicked but revealed nothing new
			return count, nil
		}
		prev = count
	}

	log.Printf("pagination ceiling of %d cycles reached with %d offers", maxCycles, prev)
	return prev, nil
}
