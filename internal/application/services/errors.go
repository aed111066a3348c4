package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAddress rejects a faucet request for a malformed recipient
var ErrInvalidAddress = errors.New("invalid address")

// ErrDispatchFailed marks a drip that could not be submitted to the chain.
// No cooldown is recorded, so the caller may retry.
var ErrDispatchFailed = errors.New("failed to dispatch transfer")

// CooldownActiveError rejects a faucet request inside the cooldown window
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", e.Remaining)
}
