package orderbook

import "errors"

var (
	// ErrBookHalted is wrapped into every error returned by an instrument
	// whose book detected an invariant violation. The book stays halted;
	// continuing with corrupted volume accounting would hide the defect.
	ErrBookHalted = errors.New("instrument book halted")

	errNegativeVolume = errors.New("remaining volume would go negative")
	errVolumeMismatch = errors.New("cached level volume diverged from queued orders")
	errLevelDrained   = errors.New("crossable volume remains but no level is eligible")
	errShortFill      = errors.New("fill-or-kill crossed short of its pre-checked volume")
	errPriceMismatch  = errors.New("order price does not match level price")
	errInvalidOrder   = errors.New("order volume must be positive")
)
