package probability

import "math"

// AsianResult holds the outcome probabilities of one Asian handicap line
// from the home side's perspective. Push is nonzero only on whole lines.
type AsianResult struct {
	HomeWin float64
	AwayWin float64
	Push    float64
}

// AsianHandicap evaluates a handicap applied to the home side. Quarter
// lines (x.25 / x.75) split the stake across the two neighbouring lines.
func (m *ScoreMatrix) AsianHandicap(line float64) AsianResult {
	frac := math.Abs(math.Mod(line, 0.5))
	if math.Abs(frac-0.25) < 1e-9 {
		lower := m.asianSingle(line - 0.25)
		upper := m.asianSingle(line + 0.25)
		return AsianResult{
			HomeWin: (lower.HomeWin + upper.HomeWin) / 2,
			AwayWin: (lower.AwayWin + upper.AwayWin) / 2,
			Push:    (lower.Push + upper.Push) / 2,
		}
	}
	return m.asianSingle(line)
}

// asianSingle evaluates a half or whole line directly on the matrix.
func (m *ScoreMatrix) asianSingle(line float64) AsianResult {
	var res AsianResult
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			margin := float64(h) + line - float64(a)
			p := m.Cells[h][a]
			switch {
			case margin > 1e-9:
				res.HomeWin += p
			case margin < -1e-9:
				res.AwayWin += p
			default:
				res.Push += p
			}
		}
	}
	return res
}

// EffectiveProb returns the surfaced win probability for one side of
// the line. Push mass on whole-integer lines is distributed half to
// each side, so the two surfaced probabilities always sum to one.
func (r AsianResult) EffectiveProb(homeSide bool) float64 {
	if homeSide {
		return r.HomeWin + r.Push/2
	}
	return r.AwayWin + r.Push/2
}
