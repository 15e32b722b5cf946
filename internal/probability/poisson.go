package probability

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ScoreMatrix is the normalized joint distribution of full-time scores,
// the outer product of two Poisson marginals with an optional Dixon-Coles
// low-score correlation adjustment.
type ScoreMatrix struct {
	LambdaHome float64
	LambdaAway float64
	MaxGoals   int
	Cells      [][]float64 // [home][away] -> probability
}

// NewScoreMatrix builds and normalizes the matrix. rho = 0 disables the
// correlation adjustment; a negative rho raises 0-0 and dampens 1-1.
// Non-finite cells (numeric overflow) are clamped to zero and the matrix
// is renormalized, so the engine degrades instead of failing.
func NewScoreMatrix(lambdaHome, lambdaAway, rho float64, maxGoals int) *ScoreMatrix {
	if maxGoals < 2 {
		maxGoals = 8
	}
	if lambdaHome < 0 {
		lambdaHome = 0
	}
	if lambdaAway < 0 {
		lambdaAway = 0
	}

	homePMF := poissonPMF(lambdaHome, maxGoals)
	awayPMF := poissonPMF(lambdaAway, maxGoals)

	cells := make([][]float64, maxGoals+1)
	for h := 0; h <= maxGoals; h++ {
		cells[h] = make([]float64, maxGoals+1)
		for a := 0; a <= maxGoals; a++ {
			p := homePMF[h] * awayPMF[a]
			if rho != 0 {
				p *= dixonColesTau(h, a, lambdaHome, lambdaAway, rho)
			}
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
				p = 0
			}
			cells[h][a] = p
		}
	}

	m := &ScoreMatrix{
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		MaxGoals:   maxGoals,
		Cells:      cells,
	}
	m.normalize()
	return m
}

func poissonPMF(lambda float64, maxGoals int) []float64 {
	pmf := make([]float64, maxGoals+1)
	if lambda == 0 {
		pmf[0] = 1
		return pmf
	}
	dist := distuv.Poisson{Lambda: lambda}
	for k := 0; k <= maxGoals; k++ {
		p := dist.Prob(float64(k))
		if math.IsNaN(p) || math.IsInf(p, 0) {
			p = 0
		}
		pmf[k] = p
	}
	return pmf
}

// dixonColesTau adjusts the four low-score cells; tau is 1 elsewhere.
func dixonColesTau(h, a int, lh, la, rho float64) float64 {
	switch {
	case h == 0 && a == 0:
		return 1 - lh*la*rho
	case h == 0 && a == 1:
		return 1 + lh*rho
	case h == 1 && a == 0:
		return 1 + la*rho
	case h == 1 && a == 1:
		return 1 - rho
	default:
		return 1
	}
}

func (m *ScoreMatrix) normalize() {
	total := 0.0
	for h := range m.Cells {
		for a := range m.Cells[h] {
			total += m.Cells[h][a]
		}
	}
	if total <= 0 {
		// degenerate input; collapse to the 0-0 cell
		for h := range m.Cells {
			for a := range m.Cells[h] {
				m.Cells[h][a] = 0
			}
		}
		m.Cells[0][0] = 1
		return
	}
	for h := range m.Cells {
		for a := range m.Cells[h] {
			m.Cells[h][a] /= total
		}
	}
}

// Sum adds the probability of every cell satisfying the predicate.
func (m *ScoreMatrix) Sum(pred func(h, a int) bool) float64 {
	total := 0.0
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			if pred(h, a) {
				total += m.Cells[h][a]
			}
		}
	}
	return total
}

// MatchOdds returns the 1X2 probabilities.
func (m *ScoreMatrix) MatchOdds() (homeWin, draw, awayWin float64) {
	homeWin = m.Sum(func(h, a int) bool { return h > a })
	draw = m.Sum(func(h, a int) bool { return h == a })
	awayWin = m.Sum(func(h, a int) bool { return h < a })
	return homeWin, draw, awayWin
}

// DoubleChance returns P(1X), P(X2), P(12).
func (m *ScoreMatrix) DoubleChance() (dc1x, dcx2, dc12 float64) {
	hw, d, aw := m.MatchOdds()
	return hw + d, d + aw, hw + aw
}

// OverUnder returns P(total > line) and P(total < line) for a half-goal
// line such as 2.5.
func (m *ScoreMatrix) OverUnder(line float64) (over, under float64) {
	over = m.Sum(func(h, a int) bool { return float64(h+a) > line })
	return over, 1 - over
}

// BothTeamsToScore returns P(BTTS yes) and P(BTTS no).
func (m *ScoreMatrix) BothTeamsToScore() (yes, no float64) {
	yes = m.Sum(func(h, a int) bool { return h > 0 && a > 0 })
	return yes, 1 - yes
}

// OddEven returns the odd/even total-goals split using the closed-form
// identity P(even) = (1 + e^(-2λ)) / 2 for λ = λH + λA. The matrix
// truncation makes cell-summing slightly lossy; the identity is exact.
func (m *ScoreMatrix) OddEven() (odd, even float64) {
	lambda := m.LambdaHome + m.LambdaAway
	even = (1 + math.Exp(-2*lambda)) / 2
	return 1 - even, even
}

// ExactGoals returns P(total == n).
func (m *ScoreMatrix) ExactGoals(n int) float64 {
	return m.Sum(func(h, a int) bool { return h+a == n })
}

// FivePlus returns P(total >= 5).
func (m *ScoreMatrix) FivePlus() float64 {
	return m.Sum(func(h, a int) bool { return h+a >= 5 })
}

// GoalRange returns P(lo <= total <= hi).
func (m *ScoreMatrix) GoalRange(lo, hi int) float64 {
	return m.Sum(func(h, a int) bool { return h+a >= lo && h+a <= hi })
}

// WinToNil returns P(home wins to nil) and P(away wins to nil).
func (m *ScoreMatrix) WinToNil() (home, away float64) {
	home = m.Sum(func(h, a int) bool { return h > 0 && a == 0 })
	away = m.Sum(func(h, a int) bool { return a > 0 && h == 0 })
	return home, away
}

// CorrectScore returns the probability of one scoreline.
func (m *ScoreMatrix) CorrectScore(home, away int) float64 {
	if home < 0 || away < 0 || home > m.MaxGoals || away > m.MaxGoals {
		return 0
	}
	return m.Cells[home][away]
}

// ScorePrediction is one ranked correct-score candidate.
type ScorePrediction struct {
	HomeGoals   int     `json:"home_goals"`
	AwayGoals   int     `json:"away_goals"`
	Probability float64 `json:"probability"`
	FairOdds    float64 `json:"fair_odds"`
}

// TopScores returns the n most likely scorelines, ranked.
func (m *ScoreMatrix) TopScores(n int) []ScorePrediction {
	if n <= 0 {
		n = 10
	}
	preds := make([]ScorePrediction, 0, (m.MaxGoals+1)*(m.MaxGoals+1))
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			p := m.Cells[h][a]
			if p <= 0 {
				continue
			}
			preds = append(preds, ScorePrediction{
				HomeGoals:   h,
				AwayGoals:   a,
				Probability: p,
				FairOdds:    1 / p,
			})
		}
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Probability != preds[j].Probability {
			return preds[i].Probability > preds[j].Probability
		}
		if preds[i].HomeGoals != preds[j].HomeGoals {
			return preds[i].HomeGoals < preds[j].HomeGoals
		}
		return preds[i].AwayGoals < preds[j].AwayGoals
	})
	if len(preds) > n {
		preds = preds[:n]
	}
	return preds
}
