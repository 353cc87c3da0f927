package shopapi

import "time"

// RetryPolicy controls how the client retries requests that failed at the transport
// level. Completed HTTP exchanges are never retried, whatever their status code.
type RetryPolicy struct {
	// MaxAttempts is the total number of times a request may be sent, including the
	// first attempt. Values below 1 are treated as 1.
	MaxAttempts int

	// InitialDelay is the pause before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the pause between attempts.
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt. Values below 1 are
	// treated as 1 (constant delay).
	Multiplier float64
}

// DefaultRetryPolicy returns the policy the client uses when the configuration does
// not specify one: 3 attempts, 500ms initial delay, doubling up to 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond * 500,
		MaxDelay:     time.Second * 4,
		Multiplier:   2,
	}
}

// NoRetries returns a policy that sends every request exactly once. Tests that count
// requests, and operations that must not be repeated (checkout submission), use this.
func NoRetries() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// DelayBeforeAttempt returns how long to pause before the given attempt number
// (1-based). The first attempt is never delayed.
func (p RetryPolicy) DelayBeforeAttempt(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := p.InitialDelay
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	for i := 2; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return p
}
