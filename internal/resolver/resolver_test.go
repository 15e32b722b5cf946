package resolver

import (
	"testing"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsNoiseTokens(t *testing.T) {
	cases := map[string]string{
		"Arsenal FC":              "arsenal",
		"AFC Bournemouth":         "bournemouth",
		"FC Schalke 04":           "schalke 04",
		"Hannover 1896":           "hannover",
		"Real   Madrid ":          "real madrid",
		"St. Pauli":               "st pauli",
		"Brighton & Hove Albion":  "brighton hove albion",
		"1. FC Union Berlin":      "1 union berlin",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeExpandsShortforms(t *testing.T) {
	assert.Equal(t, "tottenham hotspur", Normalize("Spurs"))
	assert.Equal(t, "manchester united", Normalize("Man Utd"))
	assert.Equal(t, "paris saint germain", Normalize("PSG"))
}

func loadedResolver() *Resolver {
	r := NewResolver(nil)
	r.byNormalized = map[string]string{
		"arsenal":              "Arsenal",
		"manchester united":    "Manchester United",
		"manchester city":      "Manchester City",
		"tottenham hotspur":    "Tottenham Hotspur",
		"bayern munich":        "Bayern Munich",
		"borussia dortmund":    "Borussia Dortmund",
	}
	r.bySource = map[string]string{
		"arsenal london": "Arsenal",
	}
	r.canonicals = []string{
		"Arsenal", "Bayern Munich", "Borussia Dortmund",
		"Manchester City", "Manchester United", "Tottenham Hotspur",
	}
	return r
}

func TestResolveExactCanonicalWinsFirst(t *testing.T) {
	r := loadedResolver()
	assert.Equal(t, "Arsenal", r.Resolve("arsenal"))
	assert.Equal(t, "Manchester United", r.Resolve("Manchester United"))
}

func TestResolveAliasTable(t *testing.T) {
	r := loadedResolver()
	assert.Equal(t, "Arsenal", r.Resolve("Arsenal London"))
}

func TestResolveNormalizedAndShortform(t *testing.T) {
	r := loadedResolver()
	assert.Equal(t, "Arsenal", r.Resolve("Arsenal FC"))
	assert.Equal(t, "Tottenham Hotspur", r.Resolve("Spurs"))
}

func TestResolveSubstringMatch(t *testing.T) {
	r := loadedResolver()
	assert.Equal(t, "Borussia Dortmund", r.Resolve("Dortmund"))
	assert.Equal(t, "Bayern Munich", r.Resolve("Bayern"))
}

func TestResolveAmbiguousSurfacesCandidates(t *testing.T) {
	r := loadedResolver()
	got, candidates := r.ResolveWithCandidates("Manchester")
	assert.Equal(t, "Manchester", got, "ambiguous input resolves to itself")
	assert.ElementsMatch(t, []string{"Manchester City", "Manchester United"}, candidates)
}

func TestResolveUnknownFailsSoft(t *testing.T) {
	r := loadedResolver()
	got, candidates := r.ResolveWithCandidates("Deportivo Wanka")
	assert.Equal(t, "Deportivo Wanka", got)
	assert.Empty(t, candidates)
}

func TestResolveEmptyString(t *testing.T) {
	r := loadedResolver()
	assert.Equal(t, "  ", r.Resolve("  "))
}

func TestBuildTablesRenormalizesStoredNames(t *testing.T) {
	mappings := []models.TeamNameMapping{
		{SourceName: "Leeds Utd", NormalizedName: "leeds united fc", CanonicalName: "Leeds United"},
	}
	_, byNormalized, _ := buildTables(mappings, nil)

	// the stored form kept a stop token; both it and the source name
	// must index under the stripped key the lookup path produces
	assert.Equal(t, "Leeds United", byNormalized[Normalize("Leeds United FC")])
	assert.Equal(t, "Leeds United", byNormalized[Normalize("Leeds Utd")])

	r := NewResolver(nil)
	r.byNormalized = byNormalized
	r.canonicals = []string{"Leeds United"}
	assert.Equal(t, "Leeds United", r.Resolve("Leeds United FC"))
}
