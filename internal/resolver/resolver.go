package resolver

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/database"
	"github.com/sirupsen/logrus"
)

// stop tokens stripped during normalization; a small closed set.
var stopTokens = map[string]bool{
	"fc": true, "cf": true, "afc": true, "sc": true, "ac": true,
	"the": true, "el": true, "al": true, "de": true, "la": true,
}

var yearDigits = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)

// shortforms is a closed substitution table for common nicknames.
var shortforms = map[string]string{
	"spurs":      "tottenham hotspur",
	"man utd":    "manchester united",
	"man united": "manchester united",
	"man city":   "manchester city",
	"wolves":     "wolverhampton wanderers",
	"newcastle":  "newcastle united",
	"inter":      "inter milan",
	"atletico":   "atletico madrid",
	"psg":        "paris saint-germain",
	"gladbach":   "borussia monchengladbach",
	"leeds":      "leeds united",
	"west ham":   "west ham united",
}

// Resolver canonicalizes free-form team strings. It is loaded once and
// read-only at request time; Reload swaps the tables atomically.
type Resolver struct {
	db *database.DB

	mu           sync.RWMutex
	bySource     map[string]string // raw source name -> canonical
	byNormalized map[string]string // normalized -> canonical
	canonicals   []string          // sorted canonical names
}

func NewResolver(db *database.DB) *Resolver {
	return &Resolver{
		db:           db,
		bySource:     make(map[string]string),
		byNormalized: make(map[string]string),
	}
}

// Reload rebuilds the lookup tables from team_name_mapping and the known
// canonical names in team_intelligence.
func (r *Resolver) Reload() error {
	var mappings []models.TeamNameMapping
	if err := r.db.Find(&mappings).Error; err != nil {
		return err
	}
	var teams []models.TeamIntelligence
	if err := r.db.Select("team_name").Find(&teams).Error; err != nil {
		return err
	}

	bySource, byNormalized, canonicals := buildTables(mappings, teams)

	r.mu.Lock()
	r.bySource = bySource
	r.byNormalized = byNormalized
	r.canonicals = canonicals
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"mappings":   len(mappings),
		"canonicals": len(canonicals),
	}).Info("Name resolver reloaded")
	return nil
}

func buildTables(mappings []models.TeamNameMapping, teams []models.TeamIntelligence) (bySource, byNormalized map[string]string, canonicals []string) {
	bySource = make(map[string]string, len(mappings))
	byNormalized = make(map[string]string, len(mappings)+len(teams))
	canonicalSet := make(map[string]bool, len(teams))

	for _, t := range teams {
		canonicalSet[t.TeamName] = true
		byNormalized[Normalize(t.TeamName)] = t.TeamName
	}
	for _, m := range mappings {
		bySource[strings.ToLower(strings.TrimSpace(m.SourceName))] = m.CanonicalName
		// run stored normalized names through the same pipeline so the
		// index and lookup keys always agree on stop tokens
		byNormalized[Normalize(m.SourceName)] = m.CanonicalName
		if m.NormalizedName != "" {
			byNormalized[Normalize(m.NormalizedName)] = m.CanonicalName
		}
		canonicalSet[m.CanonicalName] = true
	}

	canonicals = make([]string, 0, len(canonicalSet))
	for name := range canonicalSet {
		canonicals = append(canonicals, name)
	}
	sort.Strings(canonicals)
	return bySource, byNormalized, canonicals
}

// Normalize lower-cases, substitutes shortforms, strips year digits and
// stop tokens, and collapses whitespace.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if full, ok := shortforms[s]; ok {
		s = full
	}
	s = yearDigits.ReplaceAllString(s, " ")
	s = strings.Map(func(c rune) rune {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			return c
		}
		return ' '
	}, s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !stopTokens[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Resolve canonicalizes a team string. Ties break by (i) exact canonical
// equality, (ii) alias match, (iii) substring match, (iv) word-set overlap.
// An unresolved string resolves to itself so callers fail soft.
func (r *Resolver) Resolve(name string) string {
	canonical, _ := r.ResolveWithCandidates(name)
	return canonical
}

// ResolveWithCandidates also surfaces plausible alternatives when the
// match is ambiguous.
func (r *Resolver) ResolveWithCandidates(name string) (string, []string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return name, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// (i) exact canonical
	for _, c := range r.canonicals {
		if strings.EqualFold(c, trimmed) {
			return c, nil
		}
	}

	// (ii) alias table
	if canonical, ok := r.bySource[strings.ToLower(trimmed)]; ok {
		return canonical, nil
	}
	norm := Normalize(trimmed)
	if canonical, ok := r.byNormalized[norm]; ok {
		return canonical, nil
	}

	// (iii) substring match against normalized canonicals
	var substr []string
	for _, c := range r.canonicals {
		cn := Normalize(c)
		if cn == "" || norm == "" {
			continue
		}
		if strings.Contains(cn, norm) || strings.Contains(norm, cn) {
			substr = append(substr, c)
		}
	}
	if len(substr) == 1 {
		return substr[0], nil
	}
	if len(substr) > 1 {
		return trimmed, substr
	}

	// (iv) word-set overlap
	best, candidates := r.bestOverlap(norm)
	if best != "" {
		return best, candidates
	}

	return trimmed, nil
}

func (r *Resolver) bestOverlap(norm string) (string, []string) {
	words := strings.Fields(norm)
	if len(words) == 0 {
		return "", nil
	}
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	bestScore := 0
	var best string
	var ties []string
	for _, c := range r.canonicals {
		score := 0
		for _, w := range strings.Fields(Normalize(c)) {
			if wordSet[w] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = c
			ties = []string{c}
		} else if score == bestScore && score > 0 {
			ties = append(ties, c)
		}
	}
	if bestScore == 0 {
		return "", nil
	}
	if len(ties) > 1 {
		return "", ties
	}
	return best, nil
}
