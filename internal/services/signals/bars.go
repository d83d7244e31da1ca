package signals

import (
	"math"

	"github.com/shopspring/decimal"

	"FxPulse/internal/domain/models"
)

// dec converts a float using its shortest decimal representation, so 1.0850
// and 1.0800 subtract to exactly 0.0050.
func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func validateWindow(w models.BarWindow) error {
	for i, b := range w {
		if err := validateBar(i, b); err != nil {
			return err
		}
	}
	return nil
}

func validateBar(i int, b models.PriceBar) error {
	for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return &MalformedBarError{Index: i, Session: b.Session, Reason: "non-finite price"}
		}
		if p <= 0 {
			return &MalformedBarError{Index: i, Session: b.Session, Reason: "non-positive price"}
		}
	}
	if b.High < math.Max(b.Open, b.Close) {
		return &MalformedBarError{Index: i, Session: b.Session, Reason: "high below body"}
	}
	if b.Low > math.Min(b.Open, b.Close) {
		return &MalformedBarError{Index: i, Session: b.Session, Reason: "low above body"}
	}
	return nil
}

func meanOf(xs []decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(xs[0], xs[1:]...).Div(decimal.NewFromInt(int64(len(xs))))
}
