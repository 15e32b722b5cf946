package steam

import (
	"sort"
	"time"

	"github.com/matchpulse/betengine/internal/models"
)

// Movement thresholds in percent of the opening price.
const (
	shorteningPct = -2.0
	driftingPct   = 2.0
	sharpPct      = -5.0
)

// sharpWindow is the span inside which a sharp-sized move must land to
// carry a sharp signature; slow grinds are public money.
const sharpWindow = 6 * time.Hour

// minSharpBooks is the number of books that must quote the market for a
// move to be attributable to sharps rather than one trader's error.
const minSharpBooks = 4

// Analyze derives one steam record per market from raw collected quotes.
// Quotes for unrelated matches are the caller's problem; this is pure.
func Analyze(matchID string, quotes []models.OddsQuote) []models.SharpMoneyRecord {
	byMarket := make(map[string][]models.OddsQuote)
	for _, q := range quotes {
		if q.MatchID != matchID || q.Price <= 1 {
			continue
		}
		byMarket[q.MarketType] = append(byMarket[q.MarketType], q)
	}

	markets := make([]string, 0, len(byMarket))
	for m := range byMarket {
		markets = append(markets, m)
	}
	sort.Strings(markets)

	records := make([]models.SharpMoneyRecord, 0, len(markets))
	for _, market := range markets {
		if rec, ok := analyzeMarket(matchID, market, byMarket[market]); ok {
			records = append(records, rec)
		}
	}
	return records
}

func analyzeMarket(matchID, market string, quotes []models.OddsQuote) (models.SharpMoneyRecord, bool) {
	if len(quotes) < 2 {
		return models.SharpMoneyRecord{}, false
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CollectedAt.Before(quotes[j].CollectedAt)
	})

	books := make(map[string]bool)
	for _, q := range quotes {
		books[q.Bookmaker] = true
	}

	opening := snapshotAvg(quotes, quotes[0].CollectedAt)
	current := snapshotAvg(quotes, quotes[len(quotes)-1].CollectedAt)
	if opening <= 1 || current <= 1 {
		return models.SharpMoneyRecord{}, false
	}

	movementPct := (current - opening) / opening * 100
	direction := models.MovementStable
	switch {
	case movementPct <= shorteningPct:
		direction = models.MovementShortening
	case movementPct >= driftingPct:
		direction = models.MovementDrifting
	}

	span := quotes[len(quotes)-1].CollectedAt.Sub(quotes[0].CollectedAt)
	sharp := movementPct <= sharpPct && span <= sharpWindow && len(books) >= minSharpBooks

	return models.SharpMoneyRecord{
		MatchID:           matchID,
		MarketType:        market,
		OpeningOdds:       opening,
		CurrentOdds:       current,
		MovementPct:       movementPct,
		MovementDirection: direction,
		IsSharpMove:       sharp,
		BookmakerCount:    len(books),
		CollectedAt:       quotes[len(quotes)-1].CollectedAt,
	}, true
}

// snapshotAvg averages each book's quote nearest to the reference
// instant, so a book that only quoted once still anchors both ends.
func snapshotAvg(quotes []models.OddsQuote, at time.Time) float64 {
	nearest := make(map[string]models.OddsQuote)
	for _, q := range quotes {
		prev, ok := nearest[q.Bookmaker]
		if !ok || absDuration(q.CollectedAt.Sub(at)) < absDuration(prev.CollectedAt.Sub(at)) {
			nearest[q.Bookmaker] = q
		}
	}
	if len(nearest) == 0 {
		return 0
	}
	sum := 0.0
	for _, q := range nearest {
		sum += q.Price
	}
	return sum / float64(len(nearest))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// ToContextMap keys records by market label for the evaluator context.
func ToContextMap(records []models.SharpMoneyRecord) map[string]*models.SharpMoneyRecord {
	out := make(map[string]*models.SharpMoneyRecord, len(records))
	for i := range records {
		out[records[i].MarketType] = &records[i]
	}
	return out
}
