package models

// QuoteConvention says which side of the pair the US dollar is on.
type QuoteConvention string

const (
	// QuoteForeignUSD is a pair quoted as FOREIGN/USD, e.g. EUR/USD.
	QuoteForeignUSD QuoteConvention = "FOREIGN/USD"
	// QuoteUSDForeign is a pair quoted as USD/FOREIGN, e.g. USD/JPY.
	QuoteUSDForeign QuoteConvention = "USD/FOREIGN"
)

const (
	PipMultiplierYen      = 100
	PipMultiplierStandard = 10000
)

// InstrumentConfig is the static per-instrument configuration of the universe.
type InstrumentConfig struct {
	Symbol               string          `yaml:"symbol" json:"symbol" validate:"required"`
	Name                 string          `yaml:"name" json:"name"`
	PipMultiplier        int             `yaml:"pip_multiplier" json:"pip_multiplier" default:"10000" validate:"oneof=100 10000"`
	ExpectedRangeMinPips float64         `yaml:"expected_range_min_pips" json:"expected_range_min_pips" validate:"gte=0"`
	ExpectedRangeMaxPips float64         `yaml:"expected_range_max_pips" json:"expected_range_max_pips" validate:"gtefield=ExpectedRangeMinPips"`
	YieldSeries          string          `yaml:"yield_series" json:"yield_series,omitempty"`
	Quote                QuoteConvention `yaml:"quote" json:"quote" default:"FOREIGN/USD" validate:"oneof=FOREIGN/USD USD/FOREIGN"`
	News                 string          `yaml:"news" json:"news,omitempty"`
	Target               string          `yaml:"target" json:"target,omitempty"`
}

// DisplayName returns Name, falling back to Symbol.
func (c InstrumentConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Symbol
}
