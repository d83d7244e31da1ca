package yahoo

import (
	"time"

	"FxPulse/internal/domain/models"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quote `json:"quote"`
	} `json:"indicators"`
}

// Yahoo emits null for sessions that have not printed yet.
type quote struct {
	Open  []*float64 `json:"open"`
	High  []*float64 `json:"high"`
	Low   []*float64 `json:"low"`
	Close []*float64 `json:"close"`
}

// sessionDate maps a bar timestamp to its calendar date in the exchange's
// own offset, so an FX bar stamped 23:00 UTC lands on the next day.
func (r *chartResult) sessionDate(ts int64) time.Time {
	t := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bars returns one bar per session, oldest first. The in-progress session is
// included. A non-zero through drops sessions dated after it.
func (r *chartResult) bars(through time.Time) models.BarWindow {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	out := make(models.BarWindow, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, c := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		session := r.sessionDate(ts)
		if !through.IsZero() && session.After(through) {
			continue
		}
		bar := models.PriceBar{
			Session: session,
			Open:    *o,
			High:    *h,
			Low:     *l,
			Close:   *c,
		}
		// the live session is sometimes repeated with a fresh timestamp
		if n := len(out); n > 0 && out[n-1].Session.Equal(bar.Session) {
			out[n-1] = bar
			continue
		}
		out = append(out, bar)
	}
	return out
}

// closes returns the last close of each session, oldest first, bounded by
// through like bars.
func (r *chartResult) closes(through time.Time) []float64 {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	out := make([]float64, 0, len(r.Timestamp))
	var last time.Time
	for i, ts := range r.Timestamp {
		c := at(q.Close, i)
		if c == nil {
			continue
		}
		session := r.sessionDate(ts)
		if !through.IsZero() && session.After(through) {
			continue
		}
		if n := len(out); n > 0 && last.Equal(session) {
			out[n-1] = *c
			continue
		}
		out = append(out, *c)
		last = session
	}
	return out
}

func at(s []*float64, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
