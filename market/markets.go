package market

import "time"

// Settlement is the number of sessions that must elapse before bought
// quantity becomes sellable.
type Settlement int

const (
	// T0 means quantity is sellable in the session it was bought.
	T0 Settlement = 0
	// T1 means quantity bought in session D is sellable from session D+1.
	T1 Settlement = 1
)

func (s Settlement) String() string {
	if s == T1 {
		return "T+1"
	}
	return "T+0"
}

// Session selects the trading-session calendar for a market. Markets vary by
// calendar, not by subtype: adding a market means adding a Profile row, not a
// new implementation.
type Session int

const (
	// SessionWeekdays trades Monday through Friday in the market's location.
	SessionWeekdays Session = iota
	// SessionAlways trades around the clock (crypto).
	SessionAlways
)

// Profile holds the per-market trading rules consumed by the order validator.
// Profiles are immutable configuration, loaded once.
type Profile struct {
	ID               string
	Name             string
	Settlement       Settlement
	LotSize          float64
	Currency         string
	AllowsFractional bool
	Session          Session
	Location         *time.Location
}

// InSession reports whether the market trades at t.
func (p Profile) InSession(t time.Time) bool {
	switch p.Session {
	case SessionAlways:
		return true
	default:
		wd := t.In(p.loc()).Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
}

// SessionDay returns the calendar day of t in the market's location,
// normalized to midnight. Two timestamps belong to the same session iff
// their SessionDays are equal; T+1 lock-up compares these.
func (p Profile) SessionDay(t time.Time) time.Time {
	y, m, d := t.In(p.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc())
}

func (p Profile) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Fixed offsets rather than the tz database: daily bars only need a stable
// notion of "which calendar day", not DST-exact wall clocks.
var (
	locNewYork  = time.FixedZone("EST", -5*3600)
	locShanghai = time.FixedZone("CST", 8*3600)
)

// Markets is the rule table for the four benchmark markets.
var Markets = map[string]Profile{
	"us": {
		ID:         "us",
		Name:       "US equities",
		Settlement: T0,
		LotSize:    1,
		Currency:   "USD",
		Session:    SessionWeekdays,
		Location:   locNewYork,
	},
	"cn": {
		ID:         "cn",
		Name:       "A-shares",
		Settlement: T1,
		LotSize:    100,
		Currency:   "CNY",
		Session:    SessionWeekdays,
		Location:   locShanghai,
	},
	"crypto": {
		ID:               "crypto",
		Name:             "Crypto",
		Settlement:       T0,
		LotSize:          1,
		Currency:         "USD",
		AllowsFractional: true,
		Session:          SessionAlways,
		Location:         time.UTC,
	},
	"forex": {
		ID:         "forex",
		Name:       "Forex",
		Settlement: T0,
		LotSize:    1,
		Currency:   "USD",
		Session:    SessionWeekdays,
		Location:   time.UTC,
	},
}

// Lookup returns the profile for a market ID.
func Lookup(id string) (Profile, bool) {
	p, ok := Markets[id]
	return p, ok
}
