package models

// PassRequest triggers an evaluation pass. At replays a past evaluation
// time; Refresh drops cached market data first.
type PassRequest struct {
	At      string `query:"at" json:"at"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

// ScoreRequest evaluates a single configured instrument.
type ScoreRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
	At     string `query:"at" json:"at"`
}
