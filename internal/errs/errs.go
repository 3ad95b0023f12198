package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrStore marks persistence failures other than the expected
	// idempotent-insert conflict, which repositories swallow.
	ErrStore = errors.New("store error")

	// ErrExternalLookup marks network, timeout or unexpected-shape failures
	// from a leaderboard platform.
	ErrExternalLookup = errors.New("external lookup failed")
)

func Store(err error, op string) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

func ExternalLookup(err error, platform string) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalLookup, platform, err)
}

