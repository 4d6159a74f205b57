package domain

import "time"

// QuotaWindow names one of the two fixed rate-limit windows.
type QuotaWindow string

const (
	WindowHourly QuotaWindow = "hourly"
	WindowDaily  QuotaWindow = "daily"
)

// Duration returns the window length.
func (w QuotaWindow) Duration() time.Duration {
	if w == WindowDaily {
		return 24 * time.Hour
	}
	return time.Hour
}

// Window is a fixed-window counter. It resets lazily: a read after ResetAt
// starts a fresh window at the time of the read.
type Window struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// QuotaRecord is the per-client rate-limit state.
type QuotaRecord struct {
	Hourly Window `json:"hourly"`
	Daily  Window `json:"daily"`
}

// Stale reports whether both windows have expired, so the record carries no
// information and can be dropped.
func (r QuotaRecord) Stale(now time.Time) bool {
	return !now.Before(r.Hourly.ResetAt) && !now.Before(r.Daily.ResetAt)
}

// QuotaPolicy caps requests per hour and per day.
type QuotaPolicy struct {
	Hourly int
	Daily  int
}

// QuotaDecision is the outcome of one Apply.
type QuotaDecision struct {
	Allowed         bool
	Window          QuotaWindow
	Limit           int
	RetryAfter      time.Duration
	HourlyRemaining int
	DailyRemaining  int
}

// Apply evaluates one request against rec. found=false means the client was
// never seen. It returns the record to store and the decision. A rejected
// request leaves the counters unchanged.
func (p QuotaPolicy) Apply(rec QuotaRecord, found bool, now time.Time) (QuotaRecord, QuotaDecision) {
	if !found {
		rec = QuotaRecord{
			Hourly: Window{ResetAt: now.Add(WindowHourly.Duration())},
			Daily:  Window{ResetAt: now.Add(WindowDaily.Duration())},
		}
	}
	if !now.Before(rec.Hourly.ResetAt) {
		rec.Hourly = Window{ResetAt: now.Add(WindowHourly.Duration())}
	}
	if !now.Before(rec.Daily.ResetAt) {
		rec.Daily = Window{ResetAt: now.Add(WindowDaily.Duration())}
	}

	// The hourly window resets first, so it is checked first.
	if rec.Hourly.Count >= p.Hourly {
		return rec, QuotaDecision{
			Window:     WindowHourly,
			Limit:      p.Hourly,
			RetryAfter: rec.Hourly.ResetAt.Sub(now),
		}
	}
	if rec.Daily.Count >= p.Daily {
		return rec, QuotaDecision{
			Window:     WindowDaily,
			Limit:      p.Daily,
			RetryAfter: rec.Daily.ResetAt.Sub(now),
		}
	}

	rec.Hourly.Count++
	rec.Daily.Count++
	return rec, QuotaDecision{
		Allowed:         true,
		HourlyRemaining: p.Hourly - rec.Hourly.Count,
		DailyRemaining:  p.Daily - rec.Daily.Count,
	}
}
