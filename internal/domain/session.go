package domain

import (
	"strings"
	"time"
)

// Session is the immutable trading window. It is created once at startup
// and only time advances; nothing mutates it afterwards.
type Session struct {
	ID    string
	Base  string
	Quote string
	Start time.Time
	End   time.Time
}

// NewSession builds a session for the base/quote pair running from now for
// the given duration.
func NewSession(id, base, quote string, now time.Time, duration time.Duration) Session {
	return Session{
		ID:    id,
		Base:  strings.ToUpper(base),
		Quote: strings.ToUpper(quote),
		Start: now,
		End:   now.Add(duration),
	}
}

// Symbol is the venue trading-pair symbol, e.g. "COMPUSDT".
func (s Session) Symbol() string {
	return s.Base + s.Quote
}

// PercentCompleted reports elapsed session time as a fraction of the total,
// clamped to [0, 1]. The strategy uses it to decay the quoted spread toward
// its floor as the risk-reduction deadline approaches.
func (s Session) PercentCompleted(now time.Time) float64 {
	total := s.End.Sub(s.Start)
	if total <= 0 {
		return 1
	}
	pct := float64(now.Sub(s.Start)) / float64(total)
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// Done reports whether the session deadline has passed.
func (s Session) Done(now time.Time) bool {
	return !now.Before(s.End)
}
