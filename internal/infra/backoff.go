package infra

import (
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff delay for a retry count:
// base * 2^retry, capped. Used by the websocket reconnect loop and the
// final order drain.
func CalculateBackoff(retry int) time.Duration {
	if retry < 0 {
		return backoffBase
	}
	// 2^31s already exceeds the cap by orders of magnitude.
	if retry > 30 {
		return backoffCap
	}
	d := backoffBase * time.Duration(1<<retry)
	if d > backoffCap {
		return backoffCap
	}
	return d
}
