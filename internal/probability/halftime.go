package probability

// HalfSplit divides full-match expectancies into first-half rates. The
// base share reflects that fewer goals fall before the break; style
// deltas shift it per side, clamped to [0.35, 0.55] so no input can push
// a half to an implausible share.
type HalfSplit struct {
	FirstHome  float64
	FirstAway  float64
	SecondHome float64
	SecondAway float64
}

const (
	minHalfShare = 0.35
	maxHalfShare = 0.55
)

// SplitHalves applies the base first-half share plus per-side style deltas.
func SplitHalves(lambdaHome, lambdaAway, baseShare, deltaHome, deltaAway float64) HalfSplit {
	sh := clampShare(baseShare + deltaHome)
	sa := clampShare(baseShare + deltaAway)
	return HalfSplit{
		FirstHome:  lambdaHome * sh,
		FirstAway:  lambdaAway * sa,
		SecondHome: lambdaHome * (1 - sh),
		SecondAway: lambdaAway * (1 - sa),
	}
}

func clampShare(s float64) float64 {
	if s < minHalfShare {
		return minHalfShare
	}
	if s > maxHalfShare {
		return maxHalfShare
	}
	return s
}

// FirstHalfMatrix builds the first-half score matrix. Half matrices use a
// smaller goal cap and no low-score correlation adjustment.
func (s HalfSplit) FirstHalfMatrix(maxGoals int) *ScoreMatrix {
	return NewScoreMatrix(s.FirstHome, s.FirstAway, 0, maxGoals)
}

// SecondHalfMatrix builds the second-half score matrix.
func (s HalfSplit) SecondHalfMatrix(maxGoals int) *ScoreMatrix {
	return NewScoreMatrix(s.SecondHome, s.SecondAway, 0, maxGoals)
}

// BTTSBothHalves returns P(both teams score in each half), treating the
// halves as independent given their rates.
func (s HalfSplit) BTTSBothHalves(maxGoals int) float64 {
	firstYes, _ := s.FirstHalfMatrix(maxGoals).BothTeamsToScore()
	secondYes, _ := s.SecondHalfMatrix(maxGoals).BothTeamsToScore()
	return firstYes * secondYes
}
