package cliindex

import (
	"time"

	"github.com/schollz/progressbar/v3"
)

// withSpinner runs fn while driving one indeterminate schollz/progressbar
// spinner for the whole run, since RunFull/RunIncremental don't expose
// per-phase counters to the caller.
func withSpinner(description string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	defer bar.Finish()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bar.Add(1)
			case <-done:
				return
			}
		}
	}()

	err := fn()
	close(done)
	return err
}
