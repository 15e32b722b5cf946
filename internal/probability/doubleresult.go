package probability

import "math"

// DoubleResult is the 3x3 half-time/full-time joint distribution,
// indexed [htOutcome][ftOutcome] with 0 = home, 1 = draw, 2 = away.
type DoubleResult [3][3]float64

// seedTransitions encodes plausible in-play persistence: a side leading
// at the break usually holds; draws break either way. The seed only sets
// the correlation shape; IPF forces the marginals to match exactly.
var seedTransitions = DoubleResult{
	{0.72, 0.18, 0.10}, // leading home: hold, pegged back, collapse
	{0.30, 0.40, 0.30}, // level at the break
	{0.10, 0.18, 0.72}, // leading away
}

const (
	ipfTolerance = 1e-12
	ipfMaxSweeps = 200
)

// HalfTimeFullTime fits the joint HT/FT distribution to the given
// half-time and full-time 1X2 marginals by iterative proportional
// fitting over the seeded transition structure.
func HalfTimeFullTime(ht, ft [3]float64) DoubleResult {
	var joint DoubleResult
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			joint[i][j] = seedTransitions[i][j] * ht[i]
		}
	}

	for sweep := 0; sweep < ipfMaxSweeps; sweep++ {
		// fit columns to the full-time marginal
		for j := 0; j < 3; j++ {
			col := joint[0][j] + joint[1][j] + joint[2][j]
			if col <= 0 {
				continue
			}
			scale := ft[j] / col
			for i := 0; i < 3; i++ {
				joint[i][j] *= scale
			}
		}
		// fit rows to the half-time marginal
		maxErr := 0.0
		for i := 0; i < 3; i++ {
			row := joint[i][0] + joint[i][1] + joint[i][2]
			if row <= 0 {
				continue
			}
			scale := ht[i] / row
			for j := 0; j < 3; j++ {
				joint[i][j] *= scale
			}
			if d := math.Abs(row - ht[i]); d > maxErr {
				maxErr = d
			}
		}
		for j := 0; j < 3; j++ {
			col := joint[0][j] + joint[1][j] + joint[2][j]
			if d := math.Abs(col - ft[j]); d > maxErr {
				maxErr = d
			}
		}
		if maxErr < ipfTolerance {
			break
		}
	}
	return joint
}

// Prob returns one HT/FT cell; indices are 0 = home, 1 = draw, 2 = away.
func (d DoubleResult) Prob(htOutcome, ftOutcome int) float64 {
	if htOutcome < 0 || htOutcome > 2 || ftOutcome < 0 || ftOutcome > 2 {
		return 0
	}
	return d[htOutcome][ftOutcome]
}
