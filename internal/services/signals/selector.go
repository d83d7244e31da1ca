package signals

import (
	"slices"

	"FxPulse/internal/domain/models"
)

// SelectBest picks the entry with the highest score. Ties go to the entry that
// comes first in entries, so the caller's configured order decides. ERROR
// sentinels are only picked when every entry is an ERROR.
func SelectBest(entries []models.InstrumentScore) (models.RankedPick, error) {
	if len(entries) == 0 {
		return models.RankedPick{}, ErrEmptyUniverse
	}

	best := -1
	for i, e := range entries {
		if e.Result.IsError() {
			continue
		}
		if best < 0 || e.Result.Score > entries[best].Result.Score {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}

	pick := entries[best]
	return models.RankedPick{
		Symbol:          pick.Symbol,
		Result:          pick.Result,
		HighProbability: IsHighProbability(pick.Result),
	}, nil
}

// IsHighProbability is the actionable-signal gate: score >= 70 on a real result.
func IsHighProbability(r models.ScoreResult) bool {
	return !r.IsError() && r.Score >= HighThreshold
}

// Rank returns a copy of entries ordered by descending score. Equal scores keep
// their input order and ERROR sentinels sort after every real result.
func Rank(entries []models.InstrumentScore) []models.InstrumentScore {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.InstrumentScore) int {
		if ae, be := a.Result.IsError(), b.Result.IsError(); ae != be {
			if ae {
				return 1
			}
			return -1
		}
		return b.Result.Score - a.Result.Score
	})
	return out
}
