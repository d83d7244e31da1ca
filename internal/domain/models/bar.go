package models

import "time"

// PriceBar is one daily OHLC bar.
type PriceBar struct {
	Session time.Time `json:"session"`
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
}

// SessionOf returns the calendar date of t in loc as a UTC midnight, the
// form bar sessions are stored in.
func SessionOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Range returns high minus low in price units.
func (b PriceBar) Range() float64 { return b.High - b.Low }

// BarWindow is an ordered sequence of bars for one instrument, most recent last.
// The engine treats it as read-only.
type BarWindow []PriceBar

// Last returns the most recent bar. ok is false for an empty window.
func (w BarWindow) Last() (PriceBar, bool) {
	if len(w) == 0 {
		return PriceBar{}, false
	}
	return w[len(w)-1], true
}

// Tail returns the trailing n bars, or the whole window when it is shorter.
func (w BarWindow) Tail(n int) BarWindow {
	if n >= len(w) {
		return w
	}
	return w[len(w)-n:]
}
